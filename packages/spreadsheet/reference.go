package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// Coord is a zero-based (column, row) position on a sheet.
type Coord struct {
	Col int
	Row int
}

// Label returns the A1-style label for the coordinate.
func (c Coord) Label() string {
	return CoordToLabel(c)
}

// Offset returns the coordinate shifted by the given column and row deltas.
func (c Coord) Offset(cols, rows int) Coord {
	return Coord{Col: c.Col + cols, Row: c.Row + rows}
}

const maxCoordinate = math.MaxInt32

// LabelToCoord parses a label like "AA12" into a coordinate. letters form a
// bijective base-26 numeral (A=0, Z=25, AA=26) and are case-insensitive;
// the row number is 1-based and must not have a leading zero.
func LabelToCoord(label string) (Coord, error) {
	letters := 0
	for letters < len(label) && isLetter(label[letters]) {
		letters++
	}
	digits := label[letters:]
	if letters == 0 || digits == "" || digits[0] == '0' {
		return Coord{}, newInvalidReference(label)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Coord{}, newInvalidReference(label)
		}
	}

	col := 0
	for i := 0; i < letters; i++ {
		ch := label[i]
		if ch >= 'a' {
			ch -= 'a' - 'A'
		}
		col = col*26 + int(ch-'A') + 1
		if col > maxCoordinate {
			return Coord{}, newInvalidReference(label)
		}
	}

	row, err := strconv.Atoi(digits)
	if err != nil || row > maxCoordinate {
		return Coord{}, newInvalidReference(label)
	}
	return Coord{Col: col - 1, Row: row - 1}, nil
}

// CoordToLabel renders a coordinate as an A1-style label.
func CoordToLabel(c Coord) string {
	return ColumnName(c.Col) + strconv.Itoa(c.Row+1)
}

// ColumnName renders a zero-based column index as letters: 0 is "A", 25 is
// "Z", 26 is "AA".
func ColumnName(col int) string {
	var buf [8]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// NormalizeLabel upper-cases a valid label, so "b7" and "B7" key the same
// cell.
func NormalizeLabel(label string) (string, error) {
	c, err := LabelToCoord(label)
	if err != nil {
		return "", err
	}
	return CoordToLabel(c), nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsAllSentinel reports whether a range label is the ALL keyword used by
// Replace to target every cell.
func IsAllSentinel(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), "ALL")
}
