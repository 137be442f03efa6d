package parser

import (
	"fmt"
	"strconv"
	"strings"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/fault"
	"tinybasic/pkg/lexer"
	"tinybasic/pkg/token"
)

const (
	_ int = iota
	LOWEST
	SUM     // + or -
	PRODUCT // * or /
)

var precedences = map[token.TokenType]int{
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
}

var comparators = map[token.TokenType]bool{
	token.ASSIGN: true,
	token.LT:     true,
	token.GT:     true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int
	source string
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New returns a parser over the tokens of one line. source must be the text the
// tokens were produced from; statements keep it for LIST.
func New(tokens []token.Token, source string) *Parser {
	p := &Parser{
		tokens: tokens,
		source: source,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// ParseLine lexes and parses one line of source.
func ParseLine(source string) (*ast.ParsedLine, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return New(tokens, source).ParseLine()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
		return
	}
	p.peekToken = token.Token{Type: token.EOL, Line: 1, Column: len(p.source) + 1}
}

// ParseLine parses the whole token sequence. An empty sequence yields an empty
// ParsedLine. No partial result is returned on error.
func (p *Parser) ParseLine() (*ast.ParsedLine, error) {
	line := &ast.ParsedLine{}
	text := strings.TrimSpace(p.source)

	if p.curTokenIs(token.EOL) {
		return line, nil
	}

	if p.curTokenIs(token.INT) {
		number, ok := p.parseLineNumber()
		if !ok {
			return nil, p.failure()
		}
		line.Number = number
		text = p.sourceAfter(p.curToken)
		p.nextToken()
		if p.curTokenIs(token.EOL) {
			return line, nil
		}
	}

	stmt := p.parseStatement(text, line.HasNumber())
	if len(p.errors) == 0 && !p.peekTokenIs(token.EOL) {
		p.errors = append(p.errors, fmt.Sprintf("unexpected %s after statement", describe(p.peekToken)))
	}
	if len(p.errors) != 0 {
		return nil, p.failure()
	}

	line.Statement = stmt
	return line, nil
}

func (p *Parser) parseStatement(text string, numbered bool) ast.Statement {
	if !numbered {
		switch p.curToken.Type {
		case token.GOTO, token.IF, token.END, token.REM:
			p.errors = append(p.errors, fmt.Sprintf("%s needs a line number", p.curToken.Literal))
			return nil
		}
	}

	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement(text)
	case token.PRINT:
		return p.parsePrintStatement(text)
	case token.INPUT:
		return p.parseInputStatement(text)
	case token.GOTO:
		return p.parseGotoStatement(text)
	case token.IF:
		return p.parseIfStatement(text)
	case token.REM:
		return &ast.RemStatement{
			Source:  ast.Source{Text: text},
			Token:   p.curToken,
			Comment: p.sourceAfter(p.curToken),
		}
	case token.END:
		return &ast.EndStatement{Source: ast.Source{Text: text}, Token: p.curToken}
	default:
		p.errors = append(p.errors, fmt.Sprintf("expected a statement, got %s", describe(p.curToken)))
		return nil
	}
}

func (p *Parser) parseLetStatement(text string) ast.Statement {
	stmt := &ast.LetStatement{Source: ast.Source{Text: text}, Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	p.nextToken() // move to value
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	stmt.Value = ast.Fold(stmt.Value)

	return stmt
}

func (p *Parser) parsePrintStatement(text string) ast.Statement {
	stmt := &ast.PrintStatement{Source: ast.Source{Text: text}, Token: p.curToken}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	stmt.Value = ast.Fold(stmt.Value)

	return stmt
}

func (p *Parser) parseInputStatement(text string) ast.Statement {
	stmt := &ast.InputStatement{Source: ast.Source{Text: text}, Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return stmt
}

func (p *Parser) parseGotoStatement(text string) ast.Statement {
	stmt := &ast.GotoStatement{Source: ast.Source{Text: text}, Token: p.curToken}

	if !p.expectPeek(token.INT) {
		return nil
	}

	target, ok := p.parseLineNumber()
	if !ok {
		return nil
	}
	stmt.Target = target
	return stmt
}

func (p *Parser) parseIfStatement(text string) ast.Statement {
	stmt := &ast.IfStatement{Source: ast.Source{Text: text}, Token: p.curToken}

	p.nextToken()
	stmt.Left = p.parseExpression(LOWEST)
	if stmt.Left == nil {
		return nil
	}

	if !comparators[p.peekToken.Type] {
		p.errors = append(p.errors, fmt.Sprintf("expected comparison operator (=, < or >), got %s", describe(p.peekToken)))
		return nil
	}
	p.nextToken()
	stmt.Operator = p.curToken.Literal

	p.nextToken()
	stmt.Right = p.parseExpression(LOWEST)
	if stmt.Right == nil {
		return nil
	}

	if !p.expectPeek(token.THEN) {
		return nil
	}
	if !p.expectPeek(token.INT) {
		return nil
	}

	target, ok := p.parseLineNumber()
	if !ok {
		return nil
	}
	stmt.Target = target

	stmt.Left = ast.Fold(stmt.Left)
	stmt.Right = ast.Fold(stmt.Right)
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.EOL) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		msg := fmt.Sprintf("could not parse %q as integer", p.curToken.Literal)
		p.errors = append(p.errors, msg)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
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

// parseLineNumber reads curToken as a line number: unsigned, positive and
// within int range.
func (p *Parser) parseLineNumber() (int, bool) {
	lit := p.curToken.Literal
	if lit == "" || lit[0] < '0' || lit[0] > '9' {
		p.errors = append(p.errors, fmt.Sprintf("line number must be unsigned, got %q", lit))
		return 0, false
	}
	n, err := strconv.Atoi(lit)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("could not parse %q as line number", lit))
		return 0, false
	}
	if n <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("line number must be positive, got %d", n))
		return 0, false
	}
	return n, true
}

// sourceAfter returns the trimmed source text following tok.
func (p *Parser) sourceAfter(tok token.Token) string {
	start := tok.Column - 1 + len(tok.Literal)
	if start < 0 || start > len(p.source) {
		return ""
	}
	return strings.TrimSpace(p.source[start:])
}

func (p *Parser) failure() error {
	return fault.New(fault.Syntax, "%s", p.errors[0])
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
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

func (p *Parser) peekError(t token.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, describe(p.peekToken))
	p.errors = append(p.errors, msg)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	msg := fmt.Sprintf("expected a number, variable or '(', got %s", describe(tok))
	p.errors = append(p.errors, msg)
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

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOL:
		return "end of line"
	case token.INT, token.IDENT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return string(tok.Type)
}
