package spreadsheet

import (
	"iter"
	"strings"
)

// RangeAddress is a normalized rectangle of cells. Start is always the
// top-left corner and End the bottom-right one, both inclusive.
type RangeAddress struct {
	StartRow    int
	StartColumn int
	EndRow      int
	EndColumn   int
}

// NewRange builds a range from two corners given in any order.
func NewRange(a, b Coord) RangeAddress {
	return RangeAddress{
		StartRow:    min(a.Row, b.Row),
		StartColumn: min(a.Col, b.Col),
		EndRow:      max(a.Row, b.Row),
		EndColumn:   max(a.Col, b.Col),
	}
}

// ParseRange parses "A1:B3" or a single label "A1". surrounding whitespace
// around either corner is ignored.
func ParseRange(label string) (RangeAddress, error) {
	start, end, found := strings.Cut(label, ":")
	if !found {
		end = start
	}
	a, err := LabelToCoord(strings.TrimSpace(start))
	if err != nil {
		return RangeAddress{}, newInvalidReference(label)
	}
	b, err := LabelToCoord(strings.TrimSpace(end))
	if err != nil {
		return RangeAddress{}, newInvalidReference(label)
	}
	return NewRange(a, b), nil
}

// ExpandRange yields the labels covered by the rectangle between two
// corners, row by row from the top-left. labels are produced on demand, so
// a range far larger than any sheet can be walked and abandoned early.
func ExpandRange(startLabel, endLabel string) (iter.Seq[string], error) {
	a, err := LabelToCoord(startLabel)
	if err != nil {
		return nil, err
	}
	b, err := LabelToCoord(endLabel)
	if err != nil {
		return nil, err
	}
	coords := NewRange(a, b).Coords()
	return func(yield func(string) bool) {
		for c := range coords {
			if !yield(CoordToLabel(c)) {
				return
			}
		}
	}, nil
}

// Start returns the top-left corner.
func (r RangeAddress) Start() Coord {
	return Coord{Col: r.StartColumn, Row: r.StartRow}
}

// End returns the bottom-right corner.
func (r RangeAddress) End() Coord {
	return Coord{Col: r.EndColumn, Row: r.EndRow}
}

// Size returns the number of cells in the range.
func (r RangeAddress) Size() int {
	return (r.EndRow - r.StartRow + 1) * (r.EndColumn - r.StartColumn + 1)
}

// Contains reports whether c lies inside the range.
func (r RangeAddress) Contains(c Coord) bool {
	return c.Row >= r.StartRow && c.Row <= r.EndRow &&
		c.Col >= r.StartColumn && c.Col <= r.EndColumn
}

// Coords iterates the range row-major: outer loop rows, inner loop columns.
func (r RangeAddress) Coords() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for row := r.StartRow; row <= r.EndRow; row++ {
			for col := r.StartColumn; col <= r.EndColumn; col++ {
				if !yield(Coord{Col: col, Row: row}) {
					return
				}
			}
		}
	}
}

// String renders the range as "A1:B3", or "A1" for a single cell.
func (r RangeAddress) String() string {
	if r.Start() == r.End() {
		return CoordToLabel(r.Start())
	}
	return CoordToLabel(r.Start()) + ":" + CoordToLabel(r.End())
}
