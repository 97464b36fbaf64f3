package spreadsheet

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Command kinds as they appear in command records.
const (
	KindSetValue   = "set_value"
	KindDeleteCell = "delete_cell"
	KindAddRow     = "add_row"
	KindAddColumn  = "add_column"
	KindCalculate  = "calculate"
	KindFormat     = "format"
	KindCopy       = "copy"
	KindMove       = "move"
	KindReplace    = "replace"
	KindFilter     = "filter"
	KindSort       = "sort"
	KindChart      = "chart"
)

// Command is one structured instruction for the executor.
type Command interface {
	Kind() string
}

// CommandParser turns free text into a structured command. implementations
// live outside the engine.
type CommandParser interface {
	Parse(input string) (Command, error)
}

// SetValue stores raw input in a cell. a leading '=' makes a formula, a
// finite number makes a number, anything else is text, and "" clears it.
type SetValue struct {
	Cell  string
	Value string
}

// DeleteCell removes a cell. deleting an empty cell is a no-op.
type DeleteCell struct {
	Cell string
}

// AddRow grows the sheet by one row.
type AddRow struct{}

// AddColumn grows the sheet by one column.
type AddColumn struct{}

// Calculate aggregates a range without writing to the sheet. Formula is a
// hint naming SUM, AVERAGE or COUNT; SUM is the default.
type Calculate struct {
	Range   string
	Formula string
}

// Format is acknowledged and has no effect on data.
type Format struct {
	Range string
	Style string
}

// Copy duplicates the content of every present cell in SourceRange so the
// range's top-left corner lands on DestCell. formula text is copied as-is.
type Copy struct {
	SourceRange string
	DestCell    string
}

// Move is a Copy that also clears the source cells.
type Move struct {
	SourceRange string
	DestCell    string
}

// Replace rewrites every occurrence of Find inside text cells of Range, or
// of the whole sheet when Range is "ALL" or empty.
type Replace struct {
	Find        string
	ReplaceWith string
	Range       string
}

func (SetValue) Kind() string   { return KindSetValue }
func (DeleteCell) Kind() string { return KindDeleteCell }
func (AddRow) Kind() string     { return KindAddRow }
func (AddColumn) Kind() string  { return KindAddColumn }
func (Calculate) Kind() string  { return KindCalculate }
func (Format) Kind() string     { return KindFormat }
func (Copy) Kind() string       { return KindCopy }
func (Move) Kind() string       { return KindMove }
func (Replace) Kind() string    { return KindReplace }

// Scalar is a command value that may arrive as a JSON string or number.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Scalar(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("command value must be a string or a number: %w", err)
	}
	*s = Scalar(num.String())
	return nil
}

// CommandRecord is the loosely typed command object produced by command
// sources. replace reuses Value for the search text and Formula for the
// replacement; copy and move use Range as the source and Cell as the
// destination.
type CommandRecord struct {
	Type    string `json:"type" yaml:"type"`
	Cell    string `json:"cell,omitempty" yaml:"cell,omitempty"`
	Value   Scalar `json:"value,omitempty" yaml:"value,omitempty"`
	Range   string `json:"range,omitempty" yaml:"range,omitempty"`
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// DecodeCommand maps a record to its Command. unknown kinds, and the
// filter, sort and chart kinds the engine never implemented, are
// unsupported.
func DecodeCommand(rec CommandRecord) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(rec.Type)) {
	case KindSetValue:
		return SetValue{Cell: rec.Cell, Value: string(rec.Value)}, nil
	case KindDeleteCell:
		return DeleteCell{Cell: rec.Cell}, nil
	case KindAddRow:
		return AddRow{}, nil
	case KindAddColumn:
		return AddColumn{}, nil
	case KindCalculate:
		return Calculate{Range: rec.Range, Formula: rec.Formula}, nil
	case KindFormat:
		return Format{Range: rec.Range, Style: string(rec.Value)}, nil
	case KindCopy:
		return Copy{SourceRange: rec.Range, DestCell: rec.Cell}, nil
	case KindMove:
		return Move{SourceRange: rec.Range, DestCell: rec.Cell}, nil
	case KindReplace:
		rng := rec.Range
		if rng == "" {
			rng = "ALL"
		}
		return Replace{Find: string(rec.Value), ReplaceWith: rec.Formula, Range: rng}, nil
	}
	return nil, newUnsupportedCommand(rec.Type)
}

// Result describes what an executed command did.
type Result struct {
	Kind    string
	Message string
	Value   float64  // aggregate for Calculate
	Count   int      // cells replaced, copied or moved
	Changed []string // labels written or cleared, row-major
}

// Execute applies cmd to s. every formula is recomputed against the
// post-mutation content before Execute returns. a rejected command leaves
// the sheet untouched.
func Execute(s *Sheet, cmd Command) (Result, error) {
	var (
		res Result
		err error
	)
	switch c := cmd.(type) {
	case SetValue:
		res, err = execSetValue(s, c)
	case DeleteCell:
		res, err = execDeleteCell(s, c)
	case AddRow:
		s.AddRow()
		res = Result{Message: fmt.Sprintf("Added a row, the sheet now has %d rows", s.Rows())}
	case AddColumn:
		s.AddColumn()
		res = Result{Message: fmt.Sprintf("Added a column, the sheet now has %d columns", s.Cols())}
	case Calculate:
		return execCalculate(s, c), nil
	case Format:
		return execFormat(c)
	case Copy:
		res, err = execCopy(s, c.SourceRange, c.DestCell, false)
	case Move:
		res, err = execCopy(s, c.SourceRange, c.DestCell, true)
	case Replace:
		res, err = execReplace(s, c)
	default:
		kind := "<nil>"
		if cmd != nil {
			kind = cmd.Kind()
		}
		return Result{}, newUnsupportedCommand(kind)
	}
	if err != nil {
		return Result{}, err
	}
	res.Kind = cmd.Kind()
	RecomputeAll(s)
	return res, nil
}

func execSetValue(s *Sheet, c SetValue) (Result, error) {
	at, err := LabelToCoord(strings.TrimSpace(c.Cell))
	if err != nil {
		return Result{}, err
	}
	label := CoordToLabel(at)
	cell := ParseContent(c.Value)
	if cell == nil {
		s.Delete(at)
		return Result{Message: fmt.Sprintf("Cleared %s", label), Changed: []string{label}}, nil
	}
	if err := s.Put(at, cell); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Set %s to %s", label, cell.Content()), Changed: []string{label}}, nil
}

func execDeleteCell(s *Sheet, c DeleteCell) (Result, error) {
	at, err := LabelToCoord(strings.TrimSpace(c.Cell))
	if err != nil {
		return Result{}, err
	}
	label := CoordToLabel(at)
	if !s.Delete(at) {
		return Result{Message: fmt.Sprintf("%s is already empty", label)}, nil
	}
	return Result{Message: fmt.Sprintf("Deleted %s", label), Changed: []string{label}}, nil
}

// execCalculate never fails: a range that does not parse aggregates to 0.
func execCalculate(s *Sheet, c Calculate) Result {
	name, fn := AggregateFromHint(c.Formula)
	res := Result{Kind: KindCalculate}
	rng, err := ParseRange(strings.TrimSpace(c.Range))
	if err != nil {
		res.Message = fmt.Sprintf("%s of %q = 0", name, c.Range)
		return res
	}
	res.Value = fn(rangeValues(s, rng))
	res.Message = fmt.Sprintf("%s of %s = %s", name, rng, formatNumber(res.Value))
	return res
}

func execFormat(c Format) (Result, error) {
	target := strings.TrimSpace(c.Range)
	if target != "" {
		rng, err := ParseRange(target)
		if err != nil {
			return Result{}, err
		}
		target = rng.String()
	}
	return Result{Kind: KindFormat, Message: fmt.Sprintf("Formatting %s as %s has no effect on data", target, c.Style)}, nil
}

// execCopy copies, and with move clears, a source range. the whole plan is
// built and bounds-checked before the sheet is touched. sources that were
// overwritten by the copy itself are not cleared.
func execCopy(s *Sheet, source, dest string, move bool) (Result, error) {
	rng, err := ParseRange(strings.TrimSpace(source))
	if err != nil {
		return Result{}, err
	}
	at, err := LabelToCoord(strings.TrimSpace(dest))
	if err != nil {
		return Result{}, err
	}

	type placement struct {
		to   Coord
		cell *Cell
	}
	sources := s.CellsIn(rng)
	plan := make([]placement, 0, len(sources))
	for _, from := range sources {
		to := at.Offset(from.Col-rng.StartColumn, from.Row-rng.StartRow)
		if !s.InBounds(to) {
			return Result{}, NewApplicationError(OutOfRange,
				fmt.Sprintf("%s would land on %s, outside the %dx%d sheet", CoordToLabel(from), CoordToLabel(to), s.Rows(), s.Cols()))
		}
		src, _ := s.Cell(from)
		plan = append(plan, placement{to: to, cell: src.Clone()})
	}

	changed := make([]Coord, 0, len(plan)*2)
	for _, p := range plan {
		// in bounds, checked above
		_ = s.Put(p.to, p.cell)
		changed = append(changed, p.to)
	}
	verb := "Copied"
	if move {
		verb = "Moved"
		// every source is cleared, including ones the copy just wrote to
		for _, from := range sources {
			s.Delete(from)
			changed = append(changed, from)
		}
	}

	return Result{
		Message: fmt.Sprintf("%s %d %s from %s to %s", verb, len(plan), plural(len(plan), "cell"), rng, CoordToLabel(at)),
		Count:   len(plan),
		Changed: labels(changed),
	}, nil
}

func execReplace(s *Sheet, c Replace) (Result, error) {
	if c.Find == "" {
		return Result{}, NewApplicationError(InvalidArgument, "replace needs a non-empty search text")
	}

	var scope []Coord
	target := strings.TrimSpace(c.Range)
	if target == "" || IsAllSentinel(target) {
		target = "ALL"
		scope = s.Coords()
	} else {
		rng, err := ParseRange(target)
		if err != nil {
			return Result{}, err
		}
		target = rng.String()
		scope = s.CellsIn(rng)
	}

	var changed []Coord
	for _, at := range scope {
		cell, _ := s.Cell(at)
		if cell.Type != CellTypeText || !strings.Contains(cell.Text, c.Find) {
			continue
		}
		replaced := strings.ReplaceAll(cell.Text, c.Find, c.ReplaceWith)
		if replaced == "" {
			s.Delete(at)
		} else {
			// scope only holds existing cells, which are in bounds
			_ = s.Put(at, NewTextCell(replaced))
		}
		changed = append(changed, at)
	}

	return Result{
		Message: fmt.Sprintf("Replaced %q with %q in %d %s of %s", c.Find, c.ReplaceWith, len(changed), plural(len(changed), "cell"), target),
		Count:   len(changed),
		Changed: labels(changed),
	}, nil
}

func labels(coords []Coord) []string {
	sortCoords(coords)
	coords = slices.Compact(coords)
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = CoordToLabel(c)
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Runner applies commands to one sheet in order, the way a command source
// feeds them: one command runs to completion before the next.
type Runner struct {
	sheet *Sheet
	last  Result
	err   error
}

// NewRunner creates a runner over s
func NewRunner(s *Sheet) *Runner {
	return &Runner{sheet: s}
}

// Run executes cmd and keeps its result. it returns the runner so calls can
// be chained.
func (r *Runner) Run(cmd Command) *Runner {
	r.last, r.err = Execute(r.sheet, cmd)
	return r
}

// Set is shorthand for Run(SetValue{...}).
func (r *Runner) Set(label string, value any) *Runner {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case float64:
		raw = formatNumber(v)
	case int:
		raw = strconv.Itoa(v)
	default:
		raw = fmt.Sprint(v)
	}
	return r.Run(SetValue{Cell: label, Value: raw})
}

// Sheet returns the sheet being mutated.
func (r *Runner) Sheet() *Sheet { return r.sheet }

// Result returns the result and error of the last command.
func (r *Runner) Result() (Result, error) { return r.last, r.err }
