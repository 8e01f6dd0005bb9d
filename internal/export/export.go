// Package export writes filtered data and summaries as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bidash/internal/core"
)

// Download file names.
const (
	FilteredCSV     = "filtered_data.csv"
	FilteredXLSX    = "filtered_data.xlsx"
	CategorySummary = "category_summary.xlsx"
	SalesMapHTML    = "sales_map.html"
)

// Content types of the downloads.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// SheetName is the name of the single sheet in every workbook.
const SheetName = "data"

// WriteCSV writes the view as comma separated UTF-8 with a header row
// and no index column. Metric cells carry their normalized value; missing
// values are empty.
func WriteCSV(w io.Writer, v *core.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(v.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < v.Len(); i++ {
		if err := cw.Write(v.Row(i)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with one sheet named "data" holding the
// header and rows. Cell values are written as given, so float64 values
// become numeric cells and nil values stay empty.
func WriteXLSX(w io.Writer, columns []string, rows [][]any) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}

	head := make([]any, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := sw.SetRow("A1", head); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

// ViewXLSX writes the view as a workbook. Normalized metric columns are
// written as numbers; every other cell is written as text.
func ViewXLSX(w io.Writer, v *core.View) error {
	columns := v.Columns()
	numeric := make([]bool, len(columns))
	for j, c := range columns {
		numeric[j] = v.Table().IsNumeric(c)
	}

	rows := make([][]any, v.Len())
	for i := range rows {
		raw := v.Row(i)
		row := make([]any, len(columns))
		for j, c := range columns {
			if !numeric[j] {
				row[j] = raw[j]
			} else if n := v.Numeric(i, c); n.Valid {
				row[j] = n.Decimal.InexactFloat64()
			}
		}
		rows[i] = row
	}
	return WriteXLSX(w, columns, rows)
}

// Column names one metric column of a breakdown workbook.
type Column struct {
	Role core.Role
	Name string
}

// BreakdownXLSX writes a per-group summary: the group column followed by
// one numeric column per metric.
func BreakdownXLSX(w io.Writer, groupColumn string, metrics []Column, rows []core.GroupRow) error {
	columns := make([]string, 0, len(metrics)+1)
	columns = append(columns, groupColumn)
	for _, m := range metrics {
		columns = append(columns, m.Name)
	}

	out := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, 0, len(columns))
		row = append(row, r.Key)
		for _, m := range metrics {
			if v, ok := r.Totals[m.Role]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		out[i] = row
	}
	return WriteXLSX(w, columns, out)
}

// newWorkbook returns an empty workbook whose only sheet is named "data".
func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	return f, nil
}
