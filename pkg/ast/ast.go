package ast

import (
	"bytes"
	"strconv"

	"tinybasic/pkg/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is one of LetStatement, PrintStatement, InputStatement,
// GotoStatement, IfStatement, RemStatement or EndStatement.
type Statement interface {
	Node
	statementNode()
	// SourceText is the statement as typed, without its line number.
	SourceText() string
}

// Expression is one of IntegerLiteral, Identifier or InfixExpression.
type Expression interface {
	Node
	expressionNode()
}

// ParsedLine is the result of parsing one input line. A zero Number means the
// line was not numbered. A numbered line with a nil Statement deletes that line.
type ParsedLine struct {
	Number    int
	Statement Statement
}

func (pl *ParsedLine) HasNumber() bool { return pl.Number > 0 }

// IsDeletion reports whether the line is a bare line number.
func (pl *ParsedLine) IsDeletion() bool { return pl.HasNumber() && pl.Statement == nil }

func (pl *ParsedLine) String() string {
	var out bytes.Buffer
	if pl.HasNumber() {
		out.WriteString(strconv.Itoa(pl.Number))
		if pl.Statement != nil {
			out.WriteString(" ")
		}
	}
	if pl.Statement != nil {
		out.WriteString(pl.Statement.String())
	}
	return out.String()
}

// Source holds the text a statement was parsed from.
type Source struct {
	Text string
}

func (s Source) SourceText() string { return s.Text }

// Statements

type LetStatement struct {
	Source
	Token token.Token // the 'LET' token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString("LET ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	return out.String()
}

type PrintStatement struct {
	Source
	Token token.Token // the 'PRINT' token
	Value Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) String() string {
	var out bytes.Buffer
	out.WriteString("PRINT ")
	if ps.Value != nil {
		out.WriteString(ps.Value.String())
	}
	return out.String()
}

type InputStatement struct {
	Source
	Token token.Token // the 'INPUT' token
	Name  *Identifier
}

func (is *InputStatement) statementNode()       {}
func (is *InputStatement) TokenLiteral() string { return is.Token.Literal }
func (is *InputStatement) String() string       { return "INPUT " + is.Name.String() }

type GotoStatement struct {
	Source
	Token  token.Token // the 'GOTO' token
	Target int
}

func (gs *GotoStatement) statementNode()       {}
func (gs *GotoStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GotoStatement) String() string       { return "GOTO " + strconv.Itoa(gs.Target) }

type IfStatement struct {
	Source
	Token    token.Token // the 'IF' token
	Left     Expression
	Operator string // one of "=", "<", ">"
	Right    Expression
	Target   int
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("IF ")
	out.WriteString(is.Left.String())
	out.WriteString(" " + is.Operator + " ")
	out.WriteString(is.Right.String())
	out.WriteString(" THEN ")
	out.WriteString(strconv.Itoa(is.Target))
	return out.String()
}

type RemStatement struct {
	Source
	Token   token.Token // the 'REM' token
	Comment string
}

func (rs *RemStatement) statementNode()       {}
func (rs *RemStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RemStatement) String() string {
	if rs.Comment == "" {
		return "REM"
	}
	return "REM " + rs.Comment
}

type EndStatement struct {
	Source
	Token token.Token // the 'END' token
}

func (es *EndStatement) statementNode()       {}
func (es *EndStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EndStatement) String() string       { return "END" }

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")
	return out.String()
}
