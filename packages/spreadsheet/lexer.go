package spreadsheet

import "strings"

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenEquals
	TokenNumber
	TokenCell
	TokenRange
	TokenFunction
	TokenUnaryPrefixOp
	TokenBinaryOp
	TokenLeftParen
	TokenRightParen
	TokenError
)

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
)

// UnaryOp represents unary operators in AST nodes
type UnaryOp int

const (
	UnaryOpPlus UnaryOp = iota
	UnaryOpMinus
)

// character classification constants. slightly easier to read.
const (
	charNull     = 0
	charTab      = '\t'
	charNewline  = '\n'
	charReturn   = '\r'
	charSpace    = ' '
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
	charColon    = ':'
	charEqual    = '='
)

// TokenState represents the lexer state for validation
type TokenState int

const (
	StateStart TokenState = iota
	StateAfterEquals
	StateAfterValue
	StateAfterOperator
	StateAfterFunction
	StateAfterLeftParen
	StateAfterRightParen
)

// operand tokens are valid wherever a value may start
var operandTokens = map[TokenType]bool{
	TokenNumber:        true,
	TokenCell:          true,
	TokenRange:         true,
	TokenFunction:      true,
	TokenLeftParen:     true,
	TokenUnaryPrefixOp: true,
}

// tokenTransitions maps the current state to valid next token types
var tokenTransitions = map[TokenState]map[TokenType]bool{
	StateStart: {
		TokenEquals: true,
	},
	StateAfterEquals:   operandTokens,
	StateAfterOperator: operandTokens,
	StateAfterLeftParen: operandTokens,
	StateAfterFunction: {
		TokenLeftParen: true,
	},
	StateAfterValue: {
		TokenBinaryOp:   true,
		TokenRightParen: true,
		TokenEOF:        true,
	},
	StateAfterRightParen: {
		TokenBinaryOp:   true,
		TokenRightParen: true,
		TokenEOF:        true,
	},
}

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// Lexer tokenizes formula text. it validates token order with a small state
// machine so the parser only sees well-formed sequences.
type Lexer struct {
	runes      []rune
	pos        int
	state      TokenState
	parenDepth int
	tokens     []Token
}

// NewLexer creates a new lexer for the given formula input
func NewLexer(input string) *Lexer {
	return &Lexer{
		runes: []rune(input),
		state: StateStart,
	}
}

// Tokenize tokenizes the entire input, including the leading '=', and
// terminates the token list with an EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	if len(l.runes) == 0 || l.runes[0] != charEqual {
		return nil, NewSpreadsheetError(ErrorCodeValue, "formula must start with '='")
	}

	for {
		tok := l.nextToken()
		if tok.Type == TokenError {
			return nil, NewSpreadsheetError(ErrorCodeValue, tok.Value)
		}
		if !l.validateTransition(tok.Type) {
			if tok.Type == TokenEOF {
				return nil, NewSpreadsheetError(ErrorCodeValue, "unexpected end of formula")
			}
			return nil, NewSpreadsheetError(ErrorCodeValue, "unexpected token: "+tok.Value)
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
		l.updateState(tok.Type)
	}

	if l.parenDepth > 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "unbalanced parentheses: missing closing parenthesis")
	}
	return l.tokens, nil
}

// validateTransition checks if the token type is valid in current state
func (l *Lexer) validateTransition(tokenType TokenType) bool {
	validTokens, exists := tokenTransitions[l.state]
	if !exists {
		return false
	}
	return validTokens[tokenType]
}

// updateState updates the lexer state based on the token type
func (l *Lexer) updateState(tokenType TokenType) {
	switch tokenType {
	case TokenEquals:
		l.state = StateAfterEquals
	case TokenNumber, TokenCell, TokenRange:
		l.state = StateAfterValue
	case TokenUnaryPrefixOp, TokenBinaryOp:
		l.state = StateAfterOperator
	case TokenFunction:
		l.state = StateAfterFunction
	case TokenLeftParen:
		l.state = StateAfterLeftParen
	case TokenRightParen:
		l.state = StateAfterRightParen
	}
}

// nextToken returns the next token from the input
func (l *Lexer) nextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.runes) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	startPos := l.pos
	ch := l.current()

	if l.isDigit(ch) || (ch == charPeriod && l.isDigit(l.peek(1))) {
		return l.scanNumber()
	}

	switch ch {
	case charEqual:
		// only the formula prefix; there are no comparison operators
		if l.pos == 0 {
			l.pos++
			return Token{Type: TokenEquals, Value: "=", Pos: startPos}
		}
	case charLParen:
		l.pos++
		l.parenDepth++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}
	case charRParen:
		l.pos++
		l.parenDepth--
		if l.parenDepth < 0 {
			return Token{Type: TokenError, Value: "unexpected closing parenthesis", Pos: startPos}
		}
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}
	case charPlus, charMinus:
		l.pos++
		// sign after a value is a binary operator, anywhere else it is unary
		if l.state == StateAfterValue || l.state == StateAfterRightParen {
			return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}
		}
		return Token{Type: TokenUnaryPrefixOp, Value: string(ch), Pos: startPos}
	case charAsterisk, charSlash:
		l.pos++
		return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}
	}

	if l.isAlpha(ch) {
		return l.scanIdentifierOrCell()
	}

	l.pos++
	return Token{Type: TokenError, Value: "unexpected character: " + string(ch), Pos: startPos}
}

// scanNumber reads digits with an optional fractional part: "12", "1.5",
// ".5" and "3." are all accepted.
func (l *Lexer) scanNumber() Token {
	startPos := l.pos
	for l.isDigit(l.current()) {
		l.pos++
	}
	if l.current() == charPeriod {
		l.pos++
		for l.isDigit(l.current()) {
			l.pos++
		}
	}
	return Token{Type: TokenNumber, Value: l.substring(startPos, l.pos), Pos: startPos}
}

// scanIdentifierOrCell reads a run of letters and digits. a run shaped like
// a cell label is a cell, or a range when a colon and a second label follow.
// letters followed by '(' name a function. anything else is rejected.
func (l *Lexer) scanIdentifierOrCell() Token {
	startPos := l.pos
	word := l.scanWord()

	if isCellLabel(word) {
		if l.current() == charColon {
			l.pos++
			end := l.scanWord()
			if isCellLabel(end) {
				return Token{Type: TokenRange, Value: strings.ToUpper(word + ":" + end), Pos: startPos}
			}
			return Token{Type: TokenError, Value: "invalid range: " + word + ":" + end, Pos: startPos}
		}
		return Token{Type: TokenCell, Value: strings.ToUpper(word), Pos: startPos}
	}

	save := l.pos
	l.skipWhitespace()
	if l.current() == charLParen && l.isAllAlpha(word) {
		return Token{Type: TokenFunction, Value: strings.ToUpper(word), Pos: startPos}
	}
	l.pos = save
	return Token{Type: TokenError, Value: "unknown name: " + word, Pos: startPos}
}

func (l *Lexer) scanWord() string {
	startPos := l.pos
	for l.isAlphaNumeric(l.current()) {
		l.pos++
	}
	return l.substring(startPos, l.pos)
}

// helper methods for character navigation and classification

// substring returns a substring of the original input based on rune positions
func (l *Lexer) substring(start, end int) string {
	if start < 0 || end > len(l.runes) || start > end {
		return ""
	}
	return string(l.runes[start:end])
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos >= len(l.runes) || pos < 0 {
		return charNull
	}
	return l.runes[pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		ch := l.current()
		if ch == charSpace || ch == charTab || ch == charNewline || ch == charReturn {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func (l *Lexer) isAlphaNumeric(ch rune) bool {
	return l.isAlpha(ch) || l.isDigit(ch)
}

func (l *Lexer) isAllAlpha(s string) bool {
	for _, ch := range s {
		if !l.isAlpha(ch) {
			return false
		}
	}
	return s != ""
}

// isCellLabel reports whether word matches the reference grammar.
func isCellLabel(word string) bool {
	_, err := LabelToCoord(word)
	return err == nil
}
