package parser

import (
	"fmt"
	"strconv"
	"strings"

	"computor/internal/ast"
	"computor/internal/lexer"
	"computor/internal/token"
	"computor/internal/util"
)

const (
	_       int = iota
	LOWEST      // assignment
	SUM         // + -
	PRODUCT     // * / % ** //
	PREFIX      // -X
	POWER       // ^
	CALL        // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.PLUS:           SUM,
	token.MINUS:          SUM,
	token.ASTERISK:       PRODUCT,
	token.SLASH:          PRODUCT,
	token.PERCENT:        PRODUCT,
	token.MATRIX_PRODUCT: PRODUCT,
	token.MATRIX_DIVIDE:  PRODUCT,
	token.CARET:          POWER,
	token.LPAREN:         CALL,
}

var opcodes = map[token.TokenType]ast.Opcode{
	token.PLUS:           ast.Add,
	token.MINUS:          ast.Sub,
	token.ASTERISK:       ast.Mul,
	token.SLASH:          ast.Div,
	token.PERCENT:        ast.Rem,
	token.CARET:          ast.Pow,
	token.MATRIX_PRODUCT: ast.MatrixProduct,
	token.MATRIX_DIVIDE:  ast.MatrixProductDivide,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// SyntaxError is returned by ParseExpr and ParseLine. Pos is the byte
// offset of the first error.
type SyntaxError struct {
	Pos      int
	Messages []string
}

func (e *SyntaxError) Error() string { return strings.Join(e.Messages, "\n") }

type Parser struct {
	l        *lexer.Lexer
	src      string // source code here
	errors   []string
	firstPos int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		l:      l,
		src:    source,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.IMAGINARY, p.parseImaginary)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseMatrixLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.MATRIX_PRODUCT, p.parseInfixExpression)
	p.registerInfix(token.MATRIX_DIVIDE, p.parseInfixExpression)
	p.registerInfix(token.CARET, p.parseInfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// ParseExpr parses src as a single expression.
func ParseExpr(src string) (ast.Expr, error) {
	p := New(lexer.New(src), src)
	expr := p.ParseExpression()
	if err := p.err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseLine parses one line of calculator input.
func ParseLine(src string) (ast.Statement, error) {
	p := New(lexer.New(src), src)
	stmt := p.ParseStatement()
	if err := p.err(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return &SyntaxError{Pos: p.firstPos, Messages: p.errors}
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken.Position, message, args...)
}

func (p *Parser) addErrorAt(pos int, message string, args ...interface{}) {
	if len(p.errors) == 0 {
		p.firstPos = pos
	}
	line, col := util.GetLineAndColumn(p.src, pos)
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.TokenType) {
	p.addErrorAt(p.peekToken.Position, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.addError("unexpected %s", describe(p.curToken))
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []string {
	return p.errors
}

// ParseStatement parses `expr`, `expr = ?` or `target = expr`, and requires
// the whole input to be consumed.
func (p *Parser) ParseStatement() ast.Statement {
	left := p.parseExpression(LOWEST)
	if left == nil {
		return nil
	}

	var stmt ast.Statement = &ast.Evaluation{Expr: left}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		if p.peekTokenIs(token.QUESTION) {
			p.nextToken()
		} else {
			p.nextToken()
			right := p.parseExpression(LOWEST)
			if right == nil {
				return nil
			}
			stmt = &ast.Assignment{Target: left, Value: right}
		}
	} else if p.peekTokenIs(token.QUESTION) {
		p.nextToken()
	}

	if !p.expectEnd() {
		return nil
	}
	return stmt
}

// ParseExpression parses the whole input as one expression.
func (p *Parser) ParseExpression() ast.Expr {
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectEnd() {
		return nil
	}
	return expr
}

func (p *Parser) expectEnd() bool {
	if !p.peekTokenIs(token.EOF) {
		p.addErrorAt(p.peekToken.Position, "unexpected %s", describe(p.peekToken))
		return false
	}
	return true
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expr {
	return ast.NewVariable(p.curToken.Literal)
}

func (p *Parser) parseImaginary() ast.Expr {
	return ast.NewImaginary()
}

// parseNumberLiteral also handles implicit multiplication: 2x, 3i, 4(x + 1).
func (p *Parser) parseNumberLiteral() ast.Expr {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as number", p.curToken.Literal)
		return nil
	}
	num := ast.NewNumber(value)

	if p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.IMAGINARY) || p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		right := p.parseExpression(PRODUCT)
		if right == nil {
			return nil
		}
		return ast.NewOperation(num, ast.Mul, right)
	}
	return num
}

func (p *Parser) parsePrefixExpression() ast.Expr {
	negate := p.curTokenIs(token.MINUS)
	p.nextToken()

	operand := p.parseExpression(PREFIX)
	if operand == nil || !negate {
		return operand
	}

	switch v := operand.(type) {
	case *ast.Number:
		return &ast.Number{Value: v.Value.Neg()}
	case *ast.Complex:
		return &ast.Complex{Re: v.Re.Neg(), Im: v.Im.Neg()}
	default:
		return ast.NewOperation(ast.NewNumber(-1), ast.Mul, operand)
	}
}

func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	op := opcodes[p.curToken.Type]
	precedence := p.curPrecedence()
	p.nextToken()

	var right ast.Expr
	if op == ast.Pow {
		// ^ is right-associative
		right = p.parseExpression(precedence - 1)
	} else {
		right = p.parseExpression(precedence)
	}
	if right == nil {
		return nil
	}

	return ast.NewOperation(left, op, right)
}

func (p *Parser) parseGroupedExpression() ast.Expr {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpression(function ast.Expr) ast.Expr {
	v, ok := function.(*ast.Variable)
	if !ok {
		p.addError("%s is not callable", function)
		return nil
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return ast.NewFunction(v.Name, arg)
}

// parseMatrixLiteral parses [[a, b]; [c, d]]. Row lengths are not checked
// here; the evaluator reports irregular matrices.
func (p *Parser) parseMatrixLiteral() ast.Expr {
	rows := [][]ast.Expr{}

	for {
		if !p.expectPeek(token.LBRACKET) {
			return nil
		}
		row := p.parseMatrixRow()
		if row == nil {
			return nil
		}
		rows = append(rows, row)

		if !p.peekTokenIs(token.SEMICOLON) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return ast.NewMatrix(rows)
}

func (p *Parser) parseMatrixRow() []ast.Expr {
	row := []ast.Expr{}

	for {
		p.nextToken()
		cell := p.parseExpression(LOWEST)
		if cell == nil {
			return nil
		}
		row = append(row, cell)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return row
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}
