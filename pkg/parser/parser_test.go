package parser

import (
	"strings"
	"testing"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/fault"
	"tinybasic/pkg/lexer"
)

func parse(t *testing.T, input string) *ast.ParsedLine {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("lexer error for %q: %v", input, err)
	}
	p := New(tokens, input)
	line, err := p.ParseLine()
	checkParserErrors(t, p)
	if err != nil {
		t.Fatalf("ParseLine(%q) returned error: %v", input, err)
	}
	return line
}

func TestLetStatement(t *testing.T) {
	line := parse(t, "10 LET A = B + 2 * C")

	if line.Number != 10 {
		t.Fatalf("line number wrong. expected=10, got=%d", line.Number)
	}

	stmt, ok := line.Statement.(*ast.LetStatement)
	if !ok {
		t.Fatalf("line.Statement is not *ast.LetStatement. got=%T", line.Statement)
	}
	if stmt.Name.Value != "A" {
		t.Fatalf("stmt.Name.Value not 'A'. got=%q", stmt.Name.Value)
	}
	if stmt.Value.String() != "(B + (2 * C))" {
		t.Fatalf("stmt.Value wrong. got=%q", stmt.Value.String())
	}
	if stmt.SourceText() != "LET A = B + 2 * C" {
		t.Fatalf("stmt.SourceText wrong. got=%q", stmt.SourceText())
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PRINT A + B * C", "PRINT (A + (B * C))"},
		{"PRINT A * B + C", "PRINT ((A * B) + C)"},
		{"PRINT A - B - C", "PRINT ((A - B) - C)"},
		{"PRINT A / B / C", "PRINT ((A / B) / C)"},
		{"PRINT A / B * C", "PRINT ((A / B) * C)"},
		{"PRINT (A + B) * C", "PRINT ((A + B) * C)"},
		{"PRINT A * (B - (C + D))", "PRINT (A * (B - (C + D)))"},
		{"PRINT A - -1", "PRINT (A - -1)"},
		{"PRINT 2 + 3 * 4", "PRINT 14"},
		{"PRINT (2 + 3) * 4", "PRINT 20"},
		{"PRINT 1 / 0", "PRINT (1 / 0)"},
	}

	for i, tt := range tests {
		line := parse(t, tt.input)
		if got := line.Statement.String(); got != tt.expected {
			t.Fatalf("tests[%d] - expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		input    string
		number   int
		expected string
		text     string
	}{
		{"10 PRINT A", 10, "PRINT A", "PRINT A"},
		{"  20   INPUT N  ", 20, "INPUT N", "INPUT N"},
		{"30 GOTO 10", 30, "GOTO 10", "GOTO 10"},
		{"40 IF A < 10 THEN 20", 40, "IF A < 10 THEN 20", "IF A < 10 THEN 20"},
		{"50 IF A + 1 = B THEN 70", 50, "IF (A + 1) = B THEN 70", "IF A + 1 = B THEN 70"},
		{"60 IF 0 > -1 THEN 10", 60, "IF 0 > -1 THEN 10", "IF 0 > -1 THEN 10"},
		{"70 REM hello, world!", 70, "REM hello, world!", "REM hello, world!"},
		{"75 REM", 75, "REM", "REM"},
		{"80 END", 80, "END", "END"},
		{"LET X = 5", 0, "LET X = 5", "LET X = 5"},
		{"PRINT X", 0, "PRINT X", "PRINT X"},
		{"INPUT X", 0, "INPUT X", "INPUT X"},
	}

	for i, tt := range tests {
		line := parse(t, tt.input)
		if line.Number != tt.number {
			t.Fatalf("tests[%d] - number wrong. expected=%d, got=%d", i, tt.number, line.Number)
		}
		if line.Statement == nil {
			t.Fatalf("tests[%d] - statement is nil", i)
		}
		if got := line.Statement.String(); got != tt.expected {
			t.Fatalf("tests[%d] - statement wrong. expected=%q, got=%q", i, tt.expected, got)
		}
		if got := line.Statement.SourceText(); got != tt.text {
			t.Fatalf("tests[%d] - source text wrong. expected=%q, got=%q", i, tt.text, got)
		}
	}
}

func TestIfStatementFields(t *testing.T) {
	line := parse(t, "10 IF X > 3 THEN 99")
	stmt, ok := line.Statement.(*ast.IfStatement)
	if !ok {
		t.Fatalf("line.Statement is not *ast.IfStatement. got=%T", line.Statement)
	}
	if stmt.Operator != ">" {
		t.Fatalf("operator is not '>'. got=%q", stmt.Operator)
	}
	if stmt.Target != 99 {
		t.Fatalf("target is not 99. got=%d", stmt.Target)
	}
	if stmt.Left.String() != "X" || stmt.Right.String() != "3" {
		t.Fatalf("operands wrong. got=%q, %q", stmt.Left.String(), stmt.Right.String())
	}
}

func TestDeletionMarker(t *testing.T) {
	line := parse(t, "120")
	if line.Number != 120 {
		t.Fatalf("line number wrong. expected=120, got=%d", line.Number)
	}
	if !line.IsDeletion() {
		t.Fatalf("expected a deletion marker, got statement %v", line.Statement)
	}
}

func TestEmptyLine(t *testing.T) {
	line := parse(t, "")
	if line.HasNumber() || line.Statement != nil {
		t.Fatalf("expected empty parsed line, got %+v", line)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"GOTO 10", "GOTO needs a line number"},
		{"IF 1 = 1 THEN 10", "IF needs a line number"},
		{"END", "END needs a line number"},
		{"REM nothing", "REM needs a line number"},
		{"10 LET = 3", "expected next token to be IDENT"},
		{"10 LET A 3", "expected next token to be ="},
		{"10 LET A =", "expected a number, variable or '('"},
		{"10 PRINT", "expected a number, variable or '('"},
		{"10 PRINT 1 2", "unexpected INT \"2\" after statement"},
		{"10 PRINT (1 + 2", "expected next token to be )"},
		{"10 PRINT -A", "expected a number, variable or '('"},
		{"10 INPUT 5", "expected next token to be IDENT"},
		{"10 GOTO X", "expected next token to be INT"},
		{"10 GOTO -5", "line number must be unsigned"},
		{"10 GOTO 0", "line number must be positive"},
		{"0 PRINT 1", "line number must be positive"},
		{"10 IF A THEN 20", "expected comparison operator"},
		{"10 IF A + B 20", "expected comparison operator"},
		{"10 IF A = B 20", "expected next token to be THEN"},
		{"10 IF A = B THEN", "expected next token to be INT"},
		{"10 END NOW", "unexpected IDENT \"NOW\" after statement"},
		{"10 FOO", "expected a statement"},
		{"print 1", "expected a statement"},
		{"10 PRINT 99999999999999999999", "could not parse"},
		{"99999999999999999999 PRINT 1", "could not parse"},
	}

	for i, tt := range tests {
		line, err := ParseLine(tt.input)
		if err == nil {
			t.Fatalf("tests[%d] - expected error for %q, got %v", i, tt.input, line)
		}
		if line != nil {
			t.Fatalf("tests[%d] - expected no partial result, got %v", i, line)
		}
		if !fault.Is(err, fault.Syntax) {
			t.Fatalf("tests[%d] - expected syntax fault, got %v", i, err)
		}
		if !strings.Contains(err.Error(), tt.message) {
			t.Fatalf("tests[%d] - error %q does not mention %q", i, err.Error(), tt.message)
		}
	}
}

func TestLexicalErrorPropagates(t *testing.T) {
	_, err := ParseLine("10 PRINT 1 & 2")
	if !fault.Is(err, fault.Lexical) {
		t.Fatalf("expected lexical fault, got %v", err)
	}
}

func checkParserErrors(t *testing.T, p *Parser) {
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}
