package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustLoad(t *testing.T, data string) *Table {
	t.Helper()
	tbl, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	return tbl
}

func TestLoadCSV(t *testing.T) {
	tbl := mustLoad(t, "\ufeff Country ,Sales,Category\nUS,\"1,200\",Tech\nDE,$300,Office\n")

	wantCols := []string{"Country", "Sales", "Category"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("Columns = %q, want %q", tbl.Columns, wantCols)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if got := tbl.Value(0, "Sales"); got != "1,200" {
		t.Errorf("Value(0, Sales) = %q, want %q", got, "1,200")
	}
	if got := tbl.Value(1, "Country"); got != "DE" {
		t.Errorf("Value(1, Country) = %q, want %q", got, "DE")
	}
	if got := tbl.Value(0, "Missing"); got != "" {
		t.Errorf("Value on unknown column = %q, want empty", got)
	}
}

func TestLoadCSV_HeaderNames(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"blank header", "Sales,,Profit", []string{"Sales", "Unnamed: 1", "Profit"}},
		{"duplicate header", "Sales,Sales,Sales", []string{"Sales", "Sales.1", "Sales.2"}},
		{"duplicate collides with existing suffix", "A,A.1,A", []string{"A", "A.1", "A.2"}},
		{"trimmed duplicates", " Region,Region ", []string{"Region", "Region.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustLoad(t, tt.header+"\n")
			if !reflect.DeepEqual(tbl.Columns, tt.want) {
				t.Errorf("Columns = %q, want %q", tbl.Columns, tt.want)
			}
		})
	}
}

func TestLoadCSV_ShortRowsPadded(t *testing.T) {
	tbl := mustLoad(t, "Country,Sales,Profit\nUS,10\n")

	row := tbl.Rows[0]
	if len(row) != 3 {
		t.Fatalf("row width = %d, want 3", len(row))
	}
	if row[2] != "" {
		t.Errorf("padded cell = %q, want empty", row[2])
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty input", "", "empty file"},
		{"only BOM", "\ufeff", "empty file"},
		{"extra fields", "A,B\n1,2\n1,2,3\n", "invalid csv: line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.data))
			if err == nil {
				t.Fatal("LoadCSV() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCSV_EmptyFileSentinel(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("error = %v, want ErrEmptyFile", err)
	}
}

func TestLoadCSV_HeaderOnly(t *testing.T) {
	tbl := mustLoad(t, "Country,Sales\n")
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	if !tbl.HasColumn("Sales") {
		t.Error("HasColumn(Sales) = false, want true")
	}
}
