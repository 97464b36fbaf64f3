package spreadsheet

// formulaEntry is one parsed formula shared by every cell holding the same
// source text. a parse failure is cached too, so broken formulas are not
// re-lexed on every recompute.
type formulaEntry struct {
	ast      ASTNode
	err      error
	refCount int
}

// FormulaTable caches parsed formulas by source text and tracks which cell
// holds which formula, so an entry is dropped once no cell uses it.
type FormulaTable struct {
	entries       map[string]*formulaEntry // source text -> parsed formula
	formulaAtCell map[Coord]string         // cell -> source text
}

// NewFormulaTable creates a new formula table
func NewFormulaTable() *FormulaTable {
	return &FormulaTable{
		entries:       make(map[string]*formulaEntry),
		formulaAtCell: make(map[Coord]string),
	}
}

// Intern records that cell holds source and returns its parsed form. a cell
// can hold one formula at a time; interning a new one releases the old.
func (ft *FormulaTable) Intern(cell Coord, source string) (ASTNode, error) {
	if old, exists := ft.formulaAtCell[cell]; exists {
		if old == source {
			e := ft.entries[old]
			return e.ast, e.err
		}
		ft.Release(cell)
	}

	e, exists := ft.entries[source]
	if !exists {
		ast, err := ParseFormula(source)
		e = &formulaEntry{ast: ast, err: err}
		ft.entries[source] = e
	}
	e.refCount++
	ft.formulaAtCell[cell] = source
	return e.ast, e.err
}

// Release forgets the formula held by cell. releasing a cell without a
// formula is a no-op.
func (ft *FormulaTable) Release(cell Coord) {
	source, exists := ft.formulaAtCell[cell]
	if !exists {
		return
	}
	delete(ft.formulaAtCell, cell)
	e := ft.entries[source]
	e.refCount--
	if e.refCount <= 0 {
		delete(ft.entries, source)
	}
}

// Lookup returns the parsed formula for source, parsing it without
// tracking when no cell holds it.
func (ft *FormulaTable) Lookup(source string) (ASTNode, error) {
	if e, exists := ft.entries[source]; exists {
		return e.ast, e.err
	}
	return ParseFormula(source)
}

// Count returns the number of distinct formulas in the table
func (ft *FormulaTable) Count() int {
	return len(ft.entries)
}
