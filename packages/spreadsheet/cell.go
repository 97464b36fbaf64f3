package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// ErrorMarker is how an error value renders in a cell.
const ErrorMarker = "#ERROR"

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNumber ValueKind = 1
	KindText   ValueKind = 2
	KindError  ValueKind = 3
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Value is a cell's display value: a number, a text string, or an error
// marker. the zero Value is not valid; build one with NumberValue,
// TextValue or ErrorValue.
type Value struct {
	kind  ValueKind
	num   float64
	text  string
	cause ErrorCode
}

func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

// ErrorValue builds an error marker value. cause is kept for diagnostics
// only; every error renders as #ERROR.
func ErrorValue(cause ErrorCode) Value {
	return Value{kind: KindError, cause: cause}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNumber() bool { return v.kind == KindNumber }

func (v Value) IsText() bool { return v.kind == KindText }

func (v Value) IsError() bool { return v.kind == KindError }

// Number returns the numeric payload and whether the value is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the text payload and whether the value is text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Cause returns the error code of an error value, or 0.
func (v Value) Cause() ErrorCode {
	if v.kind != KindError {
		return 0
	}
	return v.cause
}

// Numeric is the value a formula sees when it references this value:
// numbers as-is, text that reads as a finite number converted, everything
// else 0.
func (v Value) Numeric() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		if n, ok := parseFiniteNumber(v.text); ok {
			return n
		}
	}
	return 0
}

// String renders the value the way a cell displays it.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.text
	case KindError:
		return ErrorMarker
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// parseFiniteNumber parses trimmed text as a finite float. "Inf" and "NaN"
// are rejected.
func parseFiniteNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// CellType represents the kind of content stored in a cell. the names match
// the persisted record type.
type CellType uint8

const (
	CellTypeNumber  CellType = 1
	CellTypeText    CellType = 2
	CellTypeFormula CellType = 3
)

func (t CellType) String() string {
	switch t {
	case CellTypeNumber:
		return "number"
	case CellTypeText:
		return "text"
	case CellTypeFormula:
		return "formula"
	}
	return "unknown"
}

// ParseCellType is the inverse of CellType.String.
func ParseCellType(s string) (CellType, bool) {
	switch strings.ToLower(s) {
	case "number":
		return CellTypeNumber, true
	case "text":
		return CellTypeText, true
	case "formula":
		return CellTypeFormula, true
	}
	return 0, false
}

// Cell holds one cell's content and its cached display value.
type Cell struct {
	Type    CellType
	Number  float64 // literal for number cells
	Text    string  // literal for text cells
	Formula string  // source text, including the leading '='
	Display Value   // cached evaluation result
}

// NewNumberCell creates a literal numeric cell.
func NewNumberCell(n float64) *Cell {
	return &Cell{Type: CellTypeNumber, Number: n, Display: NumberValue(n)}
}

// NewTextCell creates a literal text cell.
func NewTextCell(s string) *Cell {
	return &Cell{Type: CellTypeText, Text: s, Display: TextValue(s)}
}

// NewFormulaCell creates a formula cell. its display value stays an error
// until the sheet recomputes it.
func NewFormulaCell(source string) *Cell {
	return &Cell{Type: CellTypeFormula, Formula: source, Display: ErrorValue(ErrorCodeOther)}
}

// ParseContent classifies raw input the way a user-typed value is stored:
// a leading '=' makes a formula, trimmed text that reads as a finite number
// makes a number, anything else is text. empty input returns nil.
func ParseContent(raw string) *Cell {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "=") {
		return NewFormulaCell(raw)
	}
	if n, ok := parseFiniteNumber(raw); ok {
		return NewNumberCell(n)
	}
	return NewTextCell(raw)
}

// Content renders the stored content: the formula source, the literal
// number, or the literal text.
func (c *Cell) Content() string {
	switch c.Type {
	case CellTypeNumber:
		return formatNumber(c.Number)
	case CellTypeFormula:
		return c.Formula
	}
	return c.Text
}

// IsFormula reports whether the cell holds a formula.
func (c *Cell) IsFormula() bool {
	return c.Type == CellTypeFormula
}

// Clone returns a copy of the cell's content. the display value is copied
// as well and is refreshed by the next recompute.
func (c *Cell) Clone() *Cell {
	dup := *c
	return &dup
}
