package spreadsheet

import (
	"fmt"
	"strings"
)

// Workbook is an ordered set of uniquely named sheets. names are matched
// case-insensitively, the way sheet tabs are.
type Workbook struct {
	sheets []*Sheet
	byName map[string]int // folded name -> index in sheets
}

// NewWorkbook creates an empty workbook
func NewWorkbook() *Workbook {
	return &Workbook{byName: make(map[string]int)}
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add appends s. an unnamed sheet is named Sheet<N> after its position.
func (wb *Workbook) Add(s *Sheet) error {
	if strings.TrimSpace(s.Name()) == "" {
		s.SetName(wb.nextDefaultName())
	}
	key := foldName(s.Name())
	if _, exists := wb.byName[key]; exists {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("sheet %q already exists", s.Name()))
	}
	wb.byName[key] = len(wb.sheets)
	wb.sheets = append(wb.sheets, s)
	return nil
}

// nextDefaultName returns the first free Sheet<N>, starting at the position
// the next sheet will take.
func (wb *Workbook) nextDefaultName() string {
	for n := len(wb.sheets) + 1; ; n++ {
		name := fmt.Sprintf("Sheet%d", n)
		if _, taken := wb.byName[foldName(name)]; !taken {
			return name
		}
	}
}

// Sheet returns the sheet called name.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	idx, ok := wb.byName[foldName(name)]
	if !ok {
		return nil, false
	}
	return wb.sheets[idx], true
}

// Rename gives the sheet called from the name to. renaming a sheet to its
// own name in a different case is allowed.
func (wb *Workbook) Rename(from, to string) error {
	idx, ok := wb.byName[foldName(from)]
	if !ok {
		return NewApplicationError(NotFound, fmt.Sprintf("sheet %q not found", from))
	}
	if strings.TrimSpace(to) == "" {
		return NewApplicationError(InvalidArgument, "sheet name must not be empty")
	}
	if other, exists := wb.byName[foldName(to)]; exists && other != idx {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("sheet %q already exists", to))
	}
	delete(wb.byName, foldName(from))
	wb.byName[foldName(to)] = idx
	wb.sheets[idx].SetName(to)
	return nil
}

// Duplicate appends a deep copy of the sheet called name under newName. an
// empty newName becomes "<name> (Copy)".
func (wb *Workbook) Duplicate(name, newName string) (*Sheet, error) {
	src, ok := wb.Sheet(name)
	if !ok {
		return nil, NewApplicationError(NotFound, fmt.Sprintf("sheet %q not found", name))
	}
	if strings.TrimSpace(newName) == "" {
		newName = src.Name() + " (Copy)"
	}
	dup := src.Clone()
	dup.SetName(newName)
	if err := wb.Add(dup); err != nil {
		return nil, err
	}
	return RecomputeAll(dup), nil
}

// Remove deletes the sheet called name and reports whether it existed.
func (wb *Workbook) Remove(name string) bool {
	idx, ok := wb.byName[foldName(name)]
	if !ok {
		return false
	}
	wb.sheets = append(wb.sheets[:idx], wb.sheets[idx+1:]...)
	wb.reindex()
	return true
}

func (wb *Workbook) reindex() {
	wb.byName = make(map[string]int, len(wb.sheets))
	for i, s := range wb.sheets {
		wb.byName[foldName(s.Name())] = i
	}
}

// Sheets returns the sheets in workbook order.
func (wb *Workbook) Sheets() []*Sheet {
	return wb.sheets
}

// Names returns the sheet names in workbook order.
func (wb *Workbook) Names() []string {
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.Name()
	}
	return names
}

func (wb *Workbook) Len() int { return len(wb.sheets) }
