package core

import (
	"reflect"
	"testing"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset("test", "sample.csv", sampleTable(), DefaultCandidates(), nil)
	if err != nil {
		t.Fatalf("NewDataset() error = %v", err)
	}
	return ds
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   string
		want Page
	}{
		{"overview", PageOverview},
		{"Map", PageMap},
		{"Category Analysis", PageCategories},
		{"categories", PageCategories},
		{"data & export", PageData},
		{"data", PageData},
		{"", PageOverview},
		{"nonsense", PageOverview},
	}

	for _, tt := range tests {
		if got := ParsePage(tt.in); got != tt.want {
			t.Errorf("ParsePage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewDataset(t *testing.T) {
	ds := sampleDataset(t)

	if !ds.Table.IsNumeric("Sales") || !ds.Table.IsNumeric("Profit") {
		t.Error("metric columns should be normalized")
	}
	if ds.Raw.IsNumeric("Sales") {
		t.Error("raw table should be untouched")
	}
	if ds.Table.IsNumeric("Category") {
		t.Error("Category should not be normalized")
	}
}

func TestNewDataset_BadOverride(t *testing.T) {
	_, err := NewDataset("x", "s", sampleTable(), DefaultCandidates(), map[Role]string{RoleSales: "Nope"})
	if err == nil {
		t.Fatal("expected error for override naming a missing column")
	}
}

func TestRun_Overview(t *testing.T) {
	ds := sampleDataset(t)

	rep := Run(ds, Selection{RoleCountry: {"US"}}, PageOverview, DefaultOptions())

	if rep.Rows != 2 || rep.TotalRows != 3 {
		t.Errorf("Rows/TotalRows = %d/%d, want 2/3", rep.Rows, rep.TotalRows)
	}
	if rep.KPIs == nil || rep.KPIs.TotalProfit != 15 {
		t.Errorf("KPIs = %+v, want total profit 15", rep.KPIs)
	}
	want := Summary{{Key: "A", Value: 100}, {Key: "B", Value: 50}}
	if !reflect.DeepEqual(rep.CategorySnapshot, want) {
		t.Errorf("CategorySnapshot = %v, want %v", rep.CategorySnapshot, want)
	}
	if rep.CountrySales != nil || rep.Preview != nil {
		t.Error("overview should not compute other pages")
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("Warnings = %q, want none", rep.Warnings)
	}
}

func TestRun_Map(t *testing.T) {
	ds := sampleDataset(t)

	rep := Run(ds, nil, PageMap, DefaultOptions())

	want := Summary{{Key: "US", Value: 150}, {Key: "UK", Value: 20}}
	if !reflect.DeepEqual(rep.CountrySales, want) {
		t.Errorf("CountrySales = %v, want %v", rep.CountrySales, want)
	}
}

func TestRun_MapWarnsWithoutCountry(t *testing.T) {
	tbl := NewTable([]string{"Sales"}, [][]string{{"1"}})
	ds, _ := NewDataset("x", "s", tbl, DefaultCandidates(), nil)

	rep := Run(ds, nil, PageMap, DefaultOptions())

	if rep.CountrySales != nil {
		t.Errorf("CountrySales = %v, want nil", rep.CountrySales)
	}
	if !reflect.DeepEqual(rep.Warnings, []string{WarnMapRoles}) {
		t.Errorf("Warnings = %q, want %q", rep.Warnings, WarnMapRoles)
	}
}

func TestRun_Categories(t *testing.T) {
	ds := sampleDataset(t)

	rep := Run(ds, nil, PageCategories, Options{CategoryTopN: 1})

	if len(rep.Breakdown) != 2 {
		t.Errorf("Breakdown len = %d, want 2", len(rep.Breakdown))
	}
	if len(rep.CategoryTop) != 1 || rep.CategoryTop[0].Key != "A" {
		t.Errorf("CategoryTop = %v, want [A]", rep.CategoryTop)
	}
	if len(rep.Pareto) != 2 || rep.Pareto[1].Share != 100 {
		t.Errorf("Pareto = %v", rep.Pareto)
	}
}

func TestRun_CategoriesWarnsWithoutSales(t *testing.T) {
	tbl := NewTable([]string{"Category", "Profit"}, [][]string{{"A", "1"}})
	ds, _ := NewDataset("x", "s", tbl, DefaultCandidates(), nil)

	rep := Run(ds, nil, PageCategories, DefaultOptions())

	if rep.Breakdown != nil {
		t.Errorf("Breakdown = %v, want nil", rep.Breakdown)
	}
	if !reflect.DeepEqual(rep.Warnings, []string{WarnCategoryRoles}) {
		t.Errorf("Warnings = %q, want %q", rep.Warnings, WarnCategoryRoles)
	}
}

func TestRun_Data(t *testing.T) {
	ds := sampleDataset(t)

	rep := Run(ds, Selection{RoleCategory: {"A"}}, PageData, Options{PreviewRows: 1})

	if rep.Preview.Len() != 1 || rep.View.Len() != 2 {
		t.Errorf("Preview/View len = %d/%d, want 1/2", rep.Preview.Len(), rep.View.Len())
	}
	if rep.Mapping["sales_col"] != "Sales" {
		t.Errorf("Mapping[sales_col] = %v, want Sales", rep.Mapping["sales_col"])
	}
}
