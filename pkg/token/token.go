package token

import "fmt"

type TokenType string

const (
	// Special
	ILLEGAL = "ILLEGAL"
	EOL     = "EOL"

	// Identifiers & Literals
	IDENT = "IDENT"
	INT   = "INT"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	LT       = "<"
	GT       = ">"

	// Delimiters
	LPAREN = "("
	RPAREN = ")"

	// Keywords
	REM   = "REM"
	LET   = "LET"
	PRINT = "PRINT"
	INPUT = "INPUT"
	GOTO  = "GOTO"
	IF    = "IF"
	THEN  = "THEN"
	END   = "END"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Literal, t.Line, t.Column)
}

// IsOperand reports whether the token can end an operand, which decides
// whether a following sign starts a literal or is an operator.
func (t Token) IsOperand() bool {
	return t.Type == INT || t.Type == IDENT || t.Type == RPAREN
}

// Keywords are matched case-sensitively.
var keywords = map[string]TokenType{
	"REM":   REM,
	"LET":   LET,
	"PRINT": PRINT,
	"INPUT": INPUT,
	"GOTO":  GOTO,
	"IF":    IF,
	"THEN":  THEN,
	"END":   END,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether t is one of the statement keywords.
func IsKeyword(t TokenType) bool {
	_, ok := keywords[string(t)]
	return ok
}
