// Package export converts sheets to and from CSV and XLSX files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// WriteCSV writes a header row of column letters followed by one record per
// sheet row holding the display value of every column, empty when absent.
func WriteCSV(w io.Writer, s *spreadsheet.Sheet) error {
	cw := csv.NewWriter(w)
	record := make([]string, s.Cols())
	for col := range record {
		record[col] = spreadsheet.ColumnName(col)
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for row := 0; row < s.Rows(); row++ {
		for col := range record {
			record[col] = ""
			if cell, ok := s.Cell(spreadsheet.Coord{Col: col, Row: row}); ok {
				record[col] = cell.Display.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV rebuilds a sheet from a CSV written by WriteCSV. the header row is
// skipped and every non-empty field is classified the way SetValue input is,
// so numbers come back as numbers and "=" fields as formulas. the sheet is
// sized from the file: one row per data record and one column per header or
// field, whichever is wider. a file with no data rows gets the default
// bounds.
func ReadCSV(r io.Reader, name string) (*spreadsheet.Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		rows   [][]string
		cols   int
		header = true
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		cols = max(cols, len(record))
		if header {
			header = false
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		cols = 0
	}
	s := spreadsheet.NewSheet(name, len(rows), cols)
	for row, record := range rows {
		for col, field := range record {
			if field == "" {
				continue
			}
			cell := spreadsheet.ParseContent(field)
			if err := s.Put(spreadsheet.Coord{Col: col, Row: row}, cell); err != nil {
				return nil, err
			}
		}
	}
	return spreadsheet.RecomputeAll(s), nil
}
