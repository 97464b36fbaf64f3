package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.alis.build/alog"
	"golang.org/x/sync/errgroup"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// WorkbookFile is the exported form of a workbook.
type WorkbookFile struct {
	Sheets    []WorkbookSheet `json:"sheets"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WorkbookSheet is one sheet of an exported workbook. bounds are optional;
// missing bounds fall back to the sheet defaults.
type WorkbookSheet struct {
	Name string   `json:"name"`
	Rows int      `json:"rows,omitempty"`
	Cols int      `json:"cols,omitempty"`
	Data []Record `json:"data"`
}

// ExportWorkbook writes wb as indented JSON.
func ExportWorkbook(w io.Writer, wb *spreadsheet.Workbook) error {
	file := WorkbookFile{
		Sheets:    make([]WorkbookSheet, 0, wb.Len()),
		CreatedAt: time.Now().UTC(),
	}
	for _, s := range wb.Sheets() {
		file.Sheets = append(file.Sheets, WorkbookSheet{
			Name: s.Name(),
			Rows: s.Rows(),
			Cols: s.Cols(),
			Data: RecordsOf(s),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	return nil
}

// ImportWorkbook reads a workbook written by ExportWorkbook. sheets without
// a name are called Sheet<N> after their position.
func ImportWorkbook(r io.Reader) (*spreadsheet.Workbook, error) {
	var file WorkbookFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid workbook file: %w", err)
	}
	if file.Sheets == nil {
		return nil, fmt.Errorf("invalid workbook file: no sheets")
	}

	wb := spreadsheet.NewWorkbook()
	for i, ws := range file.Sheets {
		name := ws.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		s := spreadsheet.NewSheet(name, ws.Rows, ws.Cols)
		if err := applyRecords(s, ws.Data); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := wb.Add(spreadsheet.RecomputeAll(s)); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

// SaveWorkbook saves every sheet of wb concurrently and returns their ids in
// workbook order.
func SaveWorkbook(ctx context.Context, st Store, wb *spreadsheet.Workbook) ([]string, error) {
	sheets := wb.Sheets()
	ids := make([]string, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sheets {
		g.Go(func() error {
			doc, err := Save(gctx, st, s)
			if err != nil {
				return err
			}
			ids[i] = doc.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	alog.Infof(ctx, "saved workbook of %d sheets", len(ids))
	return ids, nil
}

// LoadWorkbook loads the sheets with the given ids concurrently and adds
// them to a workbook in the order given.
func LoadWorkbook(ctx context.Context, st Store, ids []string) (*spreadsheet.Workbook, error) {
	sheets := make([]*spreadsheet.Sheet, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			s, err := Load(gctx, st, id)
			if err != nil {
				return err
			}
			sheets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wb := spreadsheet.NewWorkbook()
	for _, s := range sheets {
		if err := wb.Add(s); err != nil {
			return nil, err
		}
	}
	alog.Debugf(ctx, "loaded workbook of %d sheets", wb.Len())
	return wb, nil
}
