package spreadsheet

import (
	"fmt"
	"iter"
	"slices"
)

const (
	// DefaultRows is the logical row count of a new sheet.
	DefaultRows = 1000
	// DefaultCols is the logical column count of a new sheet.
	DefaultCols = 1000
)

// Sheet is a sparse mapping from coordinate to cell, bounded by a logical
// row and column count. absent cells are empty. a Sheet is not safe for
// concurrent mutation; the executor is its only writer.
type Sheet struct {
	id       string
	name     string
	rows     int
	cols     int
	cells    map[Coord]*Cell
	formulas *FormulaTable
}

var (
	_ Snapshot = (*Sheet)(nil)
	_ Resolver = (*Sheet)(nil)
)

// NewSheet creates an empty sheet. non-positive bounds fall back to the
// defaults.
func NewSheet(name string, rows, cols int) *Sheet {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return &Sheet{
		name:     name,
		rows:     rows,
		cols:     cols,
		cells:    make(map[Coord]*Cell),
		formulas: NewFormulaTable(),
	}
}

// ID returns the identifier assigned by the persistence layer, if any.
func (s *Sheet) ID() string { return s.id }

// SetID assigns the sheet identifier.
func (s *Sheet) SetID(id string) { s.id = id }

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) SetName(name string) { s.name = name }

// Rows returns the logical row count.
func (s *Sheet) Rows() int { return s.rows }

// Cols returns the logical column count.
func (s *Sheet) Cols() int { return s.cols }

// Len returns the number of non-empty cells.
func (s *Sheet) Len() int { return len(s.cells) }

// FormulaCount returns the number of distinct formula texts on the sheet.
func (s *Sheet) FormulaCount() int { return s.formulas.Count() }

// AddRow grows the logical row count by one. no cell moves.
func (s *Sheet) AddRow() { s.rows++ }

// AddColumn grows the logical column count by one. no cell moves.
func (s *Sheet) AddColumn() { s.cols++ }

// InBounds reports whether c lies inside the logical grid.
func (s *Sheet) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < s.rows && c.Col < s.cols
}

// Get returns the cell at an A1-style label. invalid labels and empty cells
// both report false.
func (s *Sheet) Get(label string) (*Cell, bool) {
	c, err := LabelToCoord(label)
	if err != nil {
		return nil, false
	}
	return s.Cell(c)
}

// Value returns the display value at label.
func (s *Sheet) Value(label string) (Value, bool) {
	cell, ok := s.Get(label)
	if !ok {
		return Value{}, false
	}
	return cell.Display, true
}

// Cell implements Snapshot.
func (s *Sheet) Cell(c Coord) (*Cell, bool) {
	cell, ok := s.cells[c]
	return cell, ok
}

// Formula implements Snapshot with the sheet's parse cache.
func (s *Sheet) Formula(source string) (ASTNode, error) {
	return s.formulas.Lookup(source)
}

// Resolve implements Resolver over cached display values.
func (s *Sheet) Resolve(c Coord) (Value, bool) {
	cell, ok := s.cells[c]
	if !ok {
		return Value{}, false
	}
	return cell.Display, true
}

// CellsIn lists the present cells inside r, row-major. it walks whichever
// is smaller: the rectangle or the cell map.
func (s *Sheet) CellsIn(r RangeAddress) []Coord {
	var coords []Coord
	if r.Size() > 0 && r.Size() <= len(s.cells) {
		for c := range r.Coords() {
			if _, ok := s.cells[c]; ok {
				coords = append(coords, c)
			}
		}
		return coords
	}
	for c := range s.cells {
		if r.Contains(c) {
			coords = append(coords, c)
		}
	}
	sortCoords(coords)
	return coords
}

// Put stores cell at c, replacing whatever was there. writes outside the
// logical grid are rejected.
func (s *Sheet) Put(c Coord, cell *Cell) error {
	if !s.InBounds(c) {
		return NewApplicationError(OutOfRange, fmt.Sprintf("%s is outside the %dx%d sheet", CoordToLabel(c), s.rows, s.cols))
	}
	if cell == nil {
		s.Delete(c)
		return nil
	}
	if cell.IsFormula() {
		s.formulas.Intern(c, cell.Formula)
	} else {
		s.formulas.Release(c)
	}
	s.cells[c] = cell
	return nil
}

// Delete removes the cell at c. it reports whether a cell was there.
func (s *Sheet) Delete(c Coord) bool {
	if _, ok := s.cells[c]; !ok {
		return false
	}
	s.formulas.Release(c)
	delete(s.cells, c)
	return true
}

// Coords returns the coordinates of every cell, row-major.
func (s *Sheet) Coords() []Coord {
	coords := make([]Coord, 0, len(s.cells))
	for c := range s.cells {
		coords = append(coords, c)
	}
	sortCoords(coords)
	return coords
}

// All iterates every cell row-major.
func (s *Sheet) All() iter.Seq2[Coord, *Cell] {
	return func(yield func(Coord, *Cell) bool) {
		for _, c := range s.Coords() {
			if !yield(c, s.cells[c]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the sheet without its id.
func (s *Sheet) Clone() *Sheet {
	dup := NewSheet(s.name, s.rows, s.cols)
	for c, cell := range s.cells {
		// bounds are identical, Put cannot fail
		_ = dup.Put(c, cell.Clone())
	}
	return dup
}

// formulaCells returns the coordinates of every formula cell, row-major.
func (s *Sheet) formulaCells() []Coord {
	var coords []Coord
	for c, cell := range s.cells {
		if cell.IsFormula() {
			coords = append(coords, c)
		}
	}
	sortCoords(coords)
	return coords
}

func sortCoords(coords []Coord) {
	slices.SortFunc(coords, func(a, b Coord) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
}
