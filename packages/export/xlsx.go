package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.alis.build/alog"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// WriteXLSX writes every sheet of wb to an xlsx workbook. numbers and text
// are written as typed values; formula cells carry both their source and the
// last computed value, and error values are written as the #ERROR marker.
func WriteXLSX(ctx context.Context, w io.Writer, wb *spreadsheet.Workbook) error {
	if wb.Len() == 0 {
		return fmt.Errorf("write xlsx: workbook has no sheets")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range wb.Sheets() {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name()); err != nil {
				return fmt.Errorf("write xlsx: sheet %q: %w", s.Name(), err)
			}
		} else if _, err := f.NewSheet(s.Name()); err != nil {
			return fmt.Errorf("write xlsx: sheet %q: %w", s.Name(), err)
		}
		if err := writeSheet(f, s); err != nil {
			return fmt.Errorf("write xlsx: sheet %q: %w", s.Name(), err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	alog.Debugf(ctx, "wrote xlsx workbook of %d sheets", wb.Len())
	return nil
}

func writeSheet(f *excelize.File, s *spreadsheet.Sheet) error {
	name := s.Name()
	for at, cell := range s.All() {
		addr, err := excelize.CoordinatesToCellName(at.Col+1, at.Row+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, addr, displayValue(cell.Display)); err != nil {
			return err
		}
		if cell.IsFormula() {
			if err := f.SetCellFormula(name, addr, strings.TrimPrefix(cell.Formula, "=")); err != nil {
				return err
			}
		}
	}
	return nil
}

func displayValue(v spreadsheet.Value) any {
	if n, ok := v.Number(); ok {
		return n
	}
	return v.String()
}

// ReadXLSX reads every worksheet of an xlsx workbook. formula cells keep
// their source; other cells are classified the way SetValue input is. each
// sheet is at least as large as its data.
func ReadXLSX(ctx context.Context, r io.Reader) (*spreadsheet.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	wb := spreadsheet.NewWorkbook()
	for _, name := range f.GetSheetList() {
		s, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("read xlsx: sheet %q: %w", name, err)
		}
		if err := wb.Add(s); err != nil {
			return nil, fmt.Errorf("read xlsx: %w", err)
		}
	}
	alog.Debugf(ctx, "read xlsx workbook of %d sheets", wb.Len())
	return wb, nil
}

func readSheet(f *excelize.File, name string) (*spreadsheet.Sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	s := spreadsheet.NewSheet(name, max(len(rows), spreadsheet.DefaultRows), max(cols, spreadsheet.DefaultCols))
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			addr, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			formula, err := f.GetCellFormula(name, addr)
			if err != nil {
				return nil, err
			}
			var cell *spreadsheet.Cell
			if formula != "" {
				cell = spreadsheet.NewFormulaCell("=" + formula)
			} else {
				cell = spreadsheet.ParseContent(value)
			}
			if cell == nil {
				continue
			}
			if err := s.Put(spreadsheet.Coord{Col: colIdx, Row: rowIdx}, cell); err != nil {
				return nil, err
			}
		}
	}
	return spreadsheet.RecomputeAll(s), nil
}
