package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned when a CSV source has no header row.
var ErrEmptyFile = errors.New("empty file")

// LoadCSV parses a comma-separated file with a header row into a Table.
//
// Header names are trimmed; blank names become "Unnamed: <i>" and repeated
// names get ".1", ".2" suffixes. Short rows are padded with empty cells.
// A row with more fields than the header is rejected.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(NewDecodingReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	columns := headerNames(header)
	width := len(columns)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}

		if len(record) > width {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, header has %d", line, len(record), width)
		}
		if len(record) < width {
			padded := make([]string, width)
			copy(padded, record)
			record = padded
		}
		rows = append(rows, record)
	}

	return NewTable(columns, rows), nil
}

// headerNames trims header cells and makes them unique.
func headerNames(header []string) []string {
	columns := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		if used[name] {
			base := name
			n := suffix[base]
			for {
				n++
				name = base + "." + strconv.Itoa(n)
				if !used[name] {
					break
				}
			}
			suffix[base] = n
		}

		used[name] = true
		columns[i] = name
	}

	return columns
}
