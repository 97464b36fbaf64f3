package spreadsheet

import (
	"fmt"
	"strconv"
)

type NodePosition struct {
	Start int
	End   int
}

// Resolver supplies referenced cells to a formula under evaluation.
type Resolver interface {
	// Resolve returns the current value of the cell at c. absent cells
	// resolve to ok=false.
	Resolve(c Coord) (v Value, ok bool)
	// CellsIn lists the coordinates of present cells inside r, row-major.
	CellsIn(r RangeAddress) []Coord
}

// ASTNode is a node of a parsed formula. the tree is evaluated as numbers:
// the only value a formula ever produces is a number or an error.
type ASTNode interface {
	Eval(r Resolver) (float64, error)
	GetPosition() NodePosition
	ToString() string
}

// Parser parses tokens into an AST
type Parser struct {
	tokens []Token
	pos    int
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position NodePosition
}

func (n *NumberNode) Eval(r Resolver) (float64, error) {
	return n.Value, nil
}

func (n *NumberNode) GetPosition() NodePosition {
	return n.Position
}

func (n *NumberNode) ToString() string {
	return formatNumber(n.Value)
}

// CellRefNode represents a reference to a single cell
type CellRefNode struct {
	Cell     Coord
	Position NodePosition
}

// Eval substitutes the referenced cell's numeric value. absent cells, text
// that is not a number, and error values all read as 0.
func (n *CellRefNode) Eval(r Resolver) (float64, error) {
	v, ok := r.Resolve(n.Cell)
	if !ok {
		return 0, nil
	}
	return v.Numeric(), nil
}

func (n *CellRefNode) GetPosition() NodePosition {
	return n.Position
}

func (n *CellRefNode) ToString() string {
	return CoordToLabel(n.Cell)
}

// RangeNode represents a range. it only has meaning as an aggregate
// argument; evaluated on its own it is an error.
type RangeNode struct {
	Range    RangeAddress
	Position NodePosition
}

func (n *RangeNode) Eval(r Resolver) (float64, error) {
	return 0, NewSpreadsheetError(ErrorCodeValue, "range used outside of an aggregate: "+n.Range.String())
}

func (n *RangeNode) GetPosition() NodePosition {
	return n.Position
}

func (n *RangeNode) ToString() string {
	return n.Range.String()
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(r Resolver) (float64, error) {
	left, err := n.Left.Eval(r)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval(r)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case BinOpAdd:
		return left + right, nil
	case BinOpSubtract:
		return left - right, nil
	case BinOpMultiply:
		return left * right, nil
	case BinOpDivide:
		if right == 0 {
			return 0, NewSpreadsheetError(ErrorCodeDiv0, "")
		}
		return left / right, nil
	default:
		return 0, NewSpreadsheetError(ErrorCodeValue, "unknown operator")
	}
}

func (n *BinaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *BinaryOpNode) ToString() string {
	opStr := ""
	switch n.Op {
	case BinOpAdd:
		opStr = "+"
	case BinOpSubtract:
		opStr = "-"
	case BinOpMultiply:
		opStr = "*"
	case BinOpDivide:
		opStr = "/"
	}
	return fmt.Sprintf("(%s%s%s)", n.Left.ToString(), opStr, n.Right.ToString())
}

// UnaryOpNode represents a unary sign
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(r Resolver) (float64, error) {
	val, err := n.Operand.Eval(r)
	if err != nil {
		return 0, err
	}
	if n.Op == UnaryOpMinus {
		return -val, nil
	}
	return val, nil
}

func (n *UnaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *UnaryOpNode) ToString() string {
	if n.Op == UnaryOpMinus {
		return "-" + n.Operand.ToString()
	}
	return "+" + n.Operand.ToString()
}

// FunctionCallNode represents an aggregate applied to one range
type FunctionCallNode struct {
	Name     string
	Arg      RangeAddress
	Position NodePosition
}

func (n *FunctionCallNode) Eval(r Resolver) (float64, error) {
	fn, ok := LookupAggregate(n.Name)
	if !ok {
		return 0, NewSpreadsheetError(ErrorCodeName, "unknown function: "+n.Name)
	}
	return fn(rangeValues(r, n.Arg)), nil
}

func (n *FunctionCallNode) GetPosition() NodePosition {
	return n.Position
}

func (n *FunctionCallNode) ToString() string {
	return fmt.Sprintf("%s(%s)", n.Name, n.Arg.String())
}

// NewParser creates a new parser over a token list produced by the lexer
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseFormula lexes and parses formula text, including its leading '='.
func ParseFormula(formula string) (ASTNode, error) {
	tokens, err := NewLexer(formula).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "no tokens to parse")
	}

	if p.tokens[p.pos].Type != TokenEquals {
		return nil, NewSpreadsheetError(ErrorCodeValue, "formula must start with '='")
	}
	p.pos++

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	if p.peekType() != TokenEOF {
		return nil, NewSpreadsheetError(ErrorCodeValue, fmt.Sprintf("unexpected token after expression: %s", p.tokens[p.pos].Value))
	}
	return node, nil
}

func (p *Parser) peekType() TokenType {
	if p.pos >= len(p.tokens) {
		return TokenEOF
	}
	return p.tokens[p.pos].Type
}

// parseAddition handles addition and subtraction (lowest precedence)
func (p *Parser) parseAddition() (ASTNode, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.peekType() == TokenBinaryOp {
		var op BinaryOp
		switch p.tokens[p.pos].Value {
		case "+":
			op = BinOpAdd
		case "-":
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.peekType() == TokenBinaryOp {
		var op BinaryOp
		switch p.tokens[p.pos].Value {
		case "*":
			op = BinOpMultiply
		case "/":
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseUnary handles prefix signs, which may be chained ("--1")
func (p *Parser) parseUnary() (ASTNode, error) {
	if p.peekType() != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}

	tok := p.tokens[p.pos]
	op := UnaryOpPlus
	if tok.Value == "-" {
		op = UnaryOpMinus
	}
	p.pos++
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: tok.Pos, End: operand.GetPosition().End},
	}, nil
}

// parsePrimary handles literals, references, aggregate calls and
// parenthesized expressions
func (p *Parser) parsePrimary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	position := NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)}

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, NewSpreadsheetError(ErrorCodeValue, fmt.Sprintf("invalid number: %s", tok.Value))
		}
		return &NumberNode{Value: val, Position: position}, nil

	case TokenCell:
		p.pos++
		c, err := LabelToCoord(tok.Value)
		if err != nil {
			return nil, NewSpreadsheetError(ErrorCodeRef, err.Error())
		}
		return &CellRefNode{Cell: c, Position: position}, nil

	case TokenRange:
		p.pos++
		r, err := ParseRange(tok.Value)
		if err != nil {
			return nil, NewSpreadsheetError(ErrorCodeRef, err.Error())
		}
		return &RangeNode{Range: r, Position: position}, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if p.peekType() != TokenRightParen {
			return nil, NewSpreadsheetError(ErrorCodeValue, "expected closing parenthesis")
		}
		p.pos++
		return node, nil

	default:
		return nil, NewSpreadsheetError(ErrorCodeValue, fmt.Sprintf("unexpected token: %s", tok.Value))
	}
}

// parseFunctionCall parses NAME(range) or NAME(cell). aggregates take
// exactly one reference argument; nested expressions are rejected.
func (p *Parser) parseFunctionCall() (ASTNode, error) {
	funcTok := p.tokens[p.pos]
	p.pos++

	if _, ok := LookupAggregate(funcTok.Value); !ok {
		return nil, NewSpreadsheetError(ErrorCodeName, "unknown function: "+funcTok.Value)
	}

	if p.peekType() != TokenLeftParen {
		return nil, NewSpreadsheetError(ErrorCodeValue, "expected '(' after function name")
	}
	p.pos++

	var arg RangeAddress
	switch p.peekType() {
	case TokenRange:
		r, err := ParseRange(p.tokens[p.pos].Value)
		if err != nil {
			return nil, NewSpreadsheetError(ErrorCodeRef, err.Error())
		}
		arg = r
	case TokenCell:
		c, err := LabelToCoord(p.tokens[p.pos].Value)
		if err != nil {
			return nil, NewSpreadsheetError(ErrorCodeRef, err.Error())
		}
		arg = NewRange(c, c)
	default:
		return nil, NewSpreadsheetError(ErrorCodeValue, funcTok.Value+" expects a cell or range argument")
	}
	p.pos++

	if p.peekType() != TokenRightParen {
		return nil, NewSpreadsheetError(ErrorCodeValue, "expected ')' after "+funcTok.Value+" argument")
	}
	endPos := p.tokens[p.pos].Pos + 1
	p.pos++

	return &FunctionCallNode{
		Name:     funcTok.Value,
		Arg:      arg,
		Position: NodePosition{Start: funcTok.Pos, End: endPos},
	}, nil
}
