package spreadsheet

import (
	"errors"
	"math"
)

// Snapshot is the read-only view of a sheet the evaluator works from.
type Snapshot interface {
	Cell(c Coord) (*Cell, bool)
	CellsIn(r RangeAddress) []Coord
	Formula(source string) (ASTNode, error)
}

// CalculationStack tracks the cells on the active evaluation chain and the
// results finished during one pass.
type CalculationStack struct {
	items      []Coord       // active call chain, outermost first
	processing map[Coord]int // cell -> position in items
	cyclic     map[Coord]struct{}
	completed  map[Coord]Value
}

// NewCalculationStack creates a new calculation stack
func NewCalculationStack() *CalculationStack {
	return &CalculationStack{
		processing: make(map[Coord]int),
		cyclic:     make(map[Coord]struct{}),
		completed:  make(map[Coord]Value),
	}
}

func (cs *CalculationStack) push(c Coord) {
	cs.processing[c] = len(cs.items)
	cs.items = append(cs.items, c)
}

func (cs *CalculationStack) pop() {
	c := cs.items[len(cs.items)-1]
	cs.items = cs.items[:len(cs.items)-1]
	delete(cs.processing, c)
}

// markCycle flags every cell from c to the top of the chain: they all
// reach c again and none of them can produce a value.
func (cs *CalculationStack) markCycle(c Coord) {
	for _, item := range cs.items[cs.processing[c]:] {
		cs.cyclic[item] = struct{}{}
	}
}

func (cs *CalculationStack) isProcessing(c Coord) bool {
	_, ok := cs.processing[c]
	return ok
}

func (cs *CalculationStack) isCyclic(c Coord) bool {
	_, ok := cs.cyclic[c]
	return ok
}

// Evaluator computes formula values against a snapshot. it never writes to
// the snapshot; results are memoized for the lifetime of the evaluator, so
// use a fresh one after every mutation.
type Evaluator struct {
	snapshot Snapshot
	stack    *CalculationStack
}

// NewEvaluator creates an evaluator over snap
func NewEvaluator(snap Snapshot) *Evaluator {
	return &Evaluator{
		snapshot: snap,
		stack:    NewCalculationStack(),
	}
}

// Evaluate computes formula text that is not stored in any cell.
func Evaluate(formula string, snap Snapshot) Value {
	ev := NewEvaluator(snap)
	ast, err := snap.Formula(formula)
	if err != nil {
		return errorValueFrom(err)
	}
	return ev.evalAST(ast)
}

// EvaluateCell returns the value of the cell at c, evaluating its formula
// and every formula it depends on.
func (e *Evaluator) EvaluateCell(c Coord) (Value, bool) {
	return e.Resolve(c)
}

// Resolve implements Resolver. literal cells return their content; formula
// cells are evaluated on demand. a cell already on the chain is a cycle and
// resolves to an error.
func (e *Evaluator) Resolve(c Coord) (Value, bool) {
	cell, ok := e.snapshot.Cell(c)
	if !ok {
		return Value{}, false
	}
	if !cell.IsFormula() {
		return cell.Display, true
	}

	if v, done := e.stack.completed[c]; done {
		return v, true
	}
	if e.stack.isProcessing(c) {
		e.stack.markCycle(c)
		return ErrorValue(ErrorCodeCircular), true
	}

	e.stack.push(c)
	var v Value
	ast, err := e.snapshot.Formula(cell.Formula)
	if err != nil {
		v = errorValueFrom(err)
	} else {
		v = e.evalAST(ast)
	}
	e.stack.pop()

	if e.stack.isCyclic(c) {
		v = ErrorValue(ErrorCodeCircular)
	}
	e.stack.completed[c] = v
	return v, true
}

// CellsIn implements Resolver.
func (e *Evaluator) CellsIn(r RangeAddress) []Coord {
	return e.snapshot.CellsIn(r)
}

func (e *Evaluator) evalAST(ast ASTNode) Value {
	n, err := ast.Eval(e)
	if err != nil {
		return errorValueFrom(err)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrorValue(ErrorCodeNum)
	}
	return NumberValue(n)
}

func errorValueFrom(err error) Value {
	var sErr *SpreadsheetError
	if errors.As(err, &sErr) {
		return ErrorValue(sErr.ErrorCode)
	}
	return ErrorValue(ErrorCodeOther)
}

// RecomputeAll re-evaluates every formula cell against the current content
// of the sheet and stores the results as display values. all results are
// computed before any is written.
func RecomputeAll(s *Sheet) *Sheet {
	ev := NewEvaluator(s)
	formulas := s.formulaCells()
	results := make([]Value, len(formulas))
	for i, c := range formulas {
		results[i], _ = ev.EvaluateCell(c)
	}
	for i, c := range formulas {
		s.cells[c].Display = results[i]
	}
	return s
}
