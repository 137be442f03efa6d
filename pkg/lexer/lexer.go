package lexer

import (
	"tinybasic/pkg/fault"
	"tinybasic/pkg/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int

	prev   token.Token // last token handed out, decides signed literals
	remark bool        // set after REM: the rest of the line is not tokenized
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Tokenize splits one line into tokens. The trailing EOL token is not
// included, so a blank line yields an empty slice.
func Tokenize(line string) ([]token.Token, error) {
	l := New(line)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOL:
			return tokens, nil
		case token.ILLEGAL:
			return nil, fault.New(fault.Lexical, "unexpected %q at column %d", tok.Literal, tok.Column)
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	l.prev = tok
	return tok
}

func (l *Lexer) nextToken() token.Token {
	if l.remark {
		return token.Token{Type: token.EOL, Line: l.line, Column: len(l.input) + 1}
	}

	for isSpace(l.ch) {
		l.readChar()
	}

	// A NUL inside the line is an illegal character, not the end of it.
	if l.position >= len(l.input) {
		return token.Token{Type: token.EOL, Literal: "", Line: l.line, Column: l.column}
	}

	var tok token.Token

	switch l.ch {
	case '+':
		if isDigit(l.peekChar()) && !l.prev.IsOperand() {
			return l.readInteger()
		}
		tok = newToken(token.PLUS, l.ch, l.line, l.column)
	case '-':
		if isDigit(l.peekChar()) && !l.prev.IsOperand() {
			return l.readInteger()
		}
		tok = newToken(token.MINUS, l.ch, l.line, l.column)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.line, l.column)
	case '=':
		tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
	case '<':
		tok = newToken(token.LT, l.ch, l.line, l.column)
	case '>':
		tok = newToken(token.GT, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	default:
		if isLetter(l.ch) {
			column := l.column
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Line = l.line
			tok.Column = column
			if tok.Type == token.REM {
				l.remark = true
			}
			return tok
		} else if isDigit(l.ch) {
			return l.readInteger()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

func newToken(tokenType token.TokenType, ch byte, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readInteger reads an optionally signed decimal literal. Range checking is
// left to the parser.
func (l *Lexer) readInteger() token.Token {
	position := l.position
	column := l.column
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.INT, Literal: l.input[position:l.position], Line: l.line, Column: column}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
