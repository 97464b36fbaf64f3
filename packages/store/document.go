package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// Record is one persisted cell: its label, its raw content and the cell
// type the content was stored as.
type Record struct {
	Ref     string `json:"ref"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Document is the persisted form of a sheet. display values are never
// stored; they are recomputed on load.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Cells     []Record  `json:"cells"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// NewDocument creates an empty document with a fresh id.
func NewDocument(name string, rows, cols int) *Document {
	now := time.Now().UTC()
	s := spreadsheet.NewSheet(name, rows, cols)
	return &Document{
		ID:        NewID(),
		Name:      name,
		Rows:      s.Rows(),
		Cols:      s.Cols(),
		Cells:     []Record{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromSheet captures the content of s in row-major order. timestamps are
// left for the caller to set.
func FromSheet(s *spreadsheet.Sheet) *Document {
	doc := &Document{
		ID:    s.ID(),
		Name:  s.Name(),
		Rows:  s.Rows(),
		Cols:  s.Cols(),
		Cells: RecordsOf(s),
	}
	return doc
}

// RecordsOf returns the cell records of s in row-major order.
func RecordsOf(s *spreadsheet.Sheet) []Record {
	records := make([]Record, 0, s.Len())
	for at, cell := range s.All() {
		records = append(records, Record{
			Ref:     at.Label(),
			Content: cell.Content(),
			Type:    cell.Type.String(),
		})
	}
	return records
}

// ToSheet rebuilds the sheet and recomputes every formula.
func (d *Document) ToSheet() (*spreadsheet.Sheet, error) {
	s := spreadsheet.NewSheet(d.Name, d.Rows, d.Cols)
	s.SetID(d.ID)
	if err := applyRecords(s, d.Cells); err != nil {
		return nil, fmt.Errorf("document %s: %w", d.ID, err)
	}
	return spreadsheet.RecomputeAll(s), nil
}

func applyRecords(s *spreadsheet.Sheet, records []Record) error {
	for _, rec := range records {
		at, err := spreadsheet.LabelToCoord(rec.Ref)
		if err != nil {
			return err
		}
		cell, err := recordCell(rec)
		if err != nil {
			return err
		}
		if err := s.Put(at, cell); err != nil {
			return err
		}
	}
	return nil
}

// recordCell builds the cell a record describes. a record without a type is
// classified from its content.
func recordCell(rec Record) (*spreadsheet.Cell, error) {
	if rec.Type == "" {
		return spreadsheet.ParseContent(rec.Content), nil
	}
	typ, ok := spreadsheet.ParseCellType(rec.Type)
	if !ok {
		return nil, fmt.Errorf("cell %s: unknown cell type %q", rec.Ref, rec.Type)
	}
	switch typ {
	case spreadsheet.CellTypeNumber:
		n, err := strconv.ParseFloat(rec.Content, 64)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", rec.Ref, err)
		}
		return spreadsheet.NewNumberCell(n), nil
	case spreadsheet.CellTypeFormula:
		return spreadsheet.NewFormulaCell(rec.Content), nil
	}
	return spreadsheet.NewTextCell(rec.Content), nil
}
