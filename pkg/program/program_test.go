package program

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/fault"
)

type scriptedInput struct {
	lines   []string
	prompts []string
}

func (s *scriptedInput) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newProgram(t *testing.T, lines []string, opts ...Option) (*Program, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	p := New(out, &scriptedInput{}, opts...)
	feed(t, p, lines...)
	return p, out
}

func feed(t *testing.T, p *Program, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := p.ProcessLine(line); err != nil {
			t.Fatalf("ProcessLine(%q) returned error: %v", line, err)
		}
	}
}

func variable(t *testing.T, p *Program, name string) int64 {
	t.Helper()
	v, ok := p.Vars().Get(name)
	if !ok {
		t.Fatalf("variable %s not defined", name)
	}
	return v
}

func TestImmediatePrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"LET A = 2 + 3 * 4", 14},
		{"LET A = (2 + 3) * 4", 20},
		{"LET A = 10 - 4 - 3", 3},
		{"LET A = -7 / 2", -3},
	}

	for i, tt := range tests {
		p, _ := newProgram(t, []string{tt.input})
		if got := variable(t, p, "A"); got != tt.expected {
			t.Fatalf("tests[%d] - %q expected=%d, got=%d", i, tt.input, tt.expected, got)
		}
	}
}

func TestRunPrograms(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			"if skips line",
			[]string{"10 IF 1 = 1 THEN 30", "20 PRINT 0", "30 END"},
			"",
		},
		{
			"fall through",
			[]string{"30 PRINT 3", "10 PRINT 1", "20 PRINT 2"},
			"1\n2\n3\n",
		},
		{
			"end stops",
			[]string{"10 PRINT 1", "20 END", "30 PRINT 2"},
			"1\n",
		},
		{
			"countdown",
			[]string{
				"10 LET N = 3",
				"20 PRINT N",
				"30 LET N = N - 1",
				"40 IF N > 0 THEN 20",
				"50 PRINT 100",
			},
			"3\n2\n1\n100\n",
		},
		{
			"forward goto",
			[]string{"10 GOTO 30", "20 PRINT 2", "30 PRINT 3"},
			"3\n",
		},
		{
			"false if falls through",
			[]string{"10 IF 2 < 1 THEN 30", "20 PRINT 2", "30 PRINT 3"},
			"2\n3\n",
		},
		{
			"undefined variable in print continues",
			[]string{"10 PRINT X", "20 PRINT 5"},
			"VARIABLE NOT DEFINED\n5\n",
		},
		{
			"rem is a no-op",
			[]string{"10 REM nothing to see", "20 PRINT 1"},
			"1\n",
		},
	}

	for _, tt := range tests {
		p, out := newProgram(t, tt.lines)
		if err := p.Run(); err != nil {
			t.Fatalf("%s: Run returned error: %v", tt.name, err)
		}
		if out.String() != tt.expected {
			t.Fatalf("%s: output wrong. expected=%q, got=%q", tt.name, tt.expected, out.String())
		}
		if p.PC() != 0 {
			t.Fatalf("%s: run state not reset, pc=%d", tt.name, p.PC())
		}
	}
}

func TestInfiniteLoopIsBoundedBySteps(t *testing.T) {
	p, out := newProgram(t, []string{"10 LET A = 1", "20 PRINT A", "30 GOTO 10"}, WithMaxSteps(30))

	err := p.Run()
	if !fault.Is(err, fault.StepLimit) {
		t.Fatalf("expected step limit fault, got %v", err)
	}
	if out.String() != strings.Repeat("1\n", 10) {
		t.Fatalf("output wrong. got=%q", out.String())
	}
	if got := variable(t, p, "A"); got != 1 {
		t.Fatalf("A wrong. got=%d", got)
	}
	if p.PC() != 0 {
		t.Fatalf("run state not reset after fault, pc=%d", p.PC())
	}
}

func TestGotoSelfIsAJump(t *testing.T) {
	p, _ := newProgram(t, []string{"10 GOTO 10", "20 PRINT 1"}, WithMaxSteps(5))
	if err := p.Run(); !fault.Is(err, fault.StepLimit) {
		t.Fatalf("expected step limit fault, got %v", err)
	}
}

func TestMissingJumpTarget(t *testing.T) {
	p, out := newProgram(t, []string{"LET B = 7", "10 GOTO 99", "20 PRINT B"})
	beforeLines := p.Lines()
	beforeVars := p.Vars().Snapshot()

	err := p.Run()
	if !fault.Is(err, fault.LineNumber) {
		t.Fatalf("expected line number fault, got %v", err)
	}
	var fe *fault.Error
	if !errors.As(err, &fe) || fe.Line != 10 {
		t.Fatalf("fault should record line 10, got %#v", err)
	}
	if !reflect.DeepEqual(p.Lines(), beforeLines) {
		t.Fatalf("lines changed. before=%v, after=%v", beforeLines, p.Lines())
	}
	if !reflect.DeepEqual(p.Vars().Snapshot(), beforeVars) {
		t.Fatalf("vars changed. before=%v, after=%v", beforeVars, p.Vars().Snapshot())
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
	if p.PC() != 0 {
		t.Fatalf("run state not reset after fault, pc=%d", p.PC())
	}
}

func TestJumpTargetCheckedAtJumpTime(t *testing.T) {
	p, out := newProgram(t, []string{"10 PRINT 1", "20 IF 1 = 1 THEN 5"})
	if err := p.Run(); !fault.Is(err, fault.LineNumber) {
		t.Fatalf("expected line number fault, got %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}

	feed(t, p, "5 END")
	out.Reset()
	if err := p.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.String() != "" {
		t.Fatalf("line 5 should run first and end. got=%q", out.String())
	}
}

func TestRuntimeFaultRecordsLine(t *testing.T) {
	p, _ := newProgram(t, []string{"10 LET Z = 0", "20 LET A = 1 / Z", "30 PRINT A"})
	err := p.Run()
	var fe *fault.Error
	if !errors.As(err, &fe) || fe.Kind != fault.DivisionByZero || fe.Line != 20 {
		t.Fatalf("expected divide by zero at line 20, got %#v", err)
	}
	if got := variable(t, p, "Z"); got != 0 {
		t.Fatalf("Z wrong. got=%d", got)
	}
	if p.Vars().Has("A") {
		t.Fatalf("A assigned despite fault")
	}
}

func TestVariablesPersistAcrossRuns(t *testing.T) {
	p, _ := newProgram(t, []string{"LET A = 0", "10 LET A = A + 1"})
	for i := 0; i < 3; i++ {
		if err := p.Run(); err != nil {
			t.Fatalf("run %d returned error: %v", i, err)
		}
	}
	if got := variable(t, p, "A"); got != 3 {
		t.Fatalf("A wrong. expected=3, got=%d", got)
	}
}

func TestClear(t *testing.T) {
	p, out := newProgram(t, []string{"LET A = 1", "10 PRINT 1", "20 PRINT 2"})
	p.Clear()

	if p.Vars().Len() != 0 {
		t.Fatalf("variables survived Clear")
	}
	if err := p.List(); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if err := p.Run(); err != nil {
		t.Fatalf("Run of empty program returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestList(t *testing.T) {
	p, out := newProgram(t, []string{
		"20   PRINT   A + 1  ",
		"10 LET A=1",
		"30 REM hello  world",
		"40 END",
		"25 PRINT 0",
		"40",
		"20 PRINT A * 2",
		"99",
	})

	expected := "10 LET A=1\n20 PRINT A * 2\n25 PRINT 0\n30 REM hello  world\n"
	for i := 0; i < 2; i++ {
		out.Reset()
		if err := p.List(); err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if out.String() != expected {
			t.Fatalf("listing %d wrong. expected=%q, got=%q", i, expected, out.String())
		}
	}
}

func TestListWithoutSourceText(t *testing.T) {
	p, out := newProgram(t, nil)
	p.AddStmt(10, &ast.EndStatement{})
	if err := p.List(); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if out.String() != "10 END\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}

func TestInputDuringRun(t *testing.T) {
	out := &bytes.Buffer{}
	in := &scriptedInput{lines: []string{"ten", " 10 "}}
	p := New(out, in, WithInputPrompt("> "))
	feed(t, p, "10 INPUT N", "20 PRINT N * 2")

	if err := p.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.String() != "INVALID NUMBER\n20\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
	if !reflect.DeepEqual(in.prompts, []string{"> ", "> "}) {
		t.Fatalf("prompts wrong. got=%q", in.prompts)
	}
}

func TestInputEOFAbortsRun(t *testing.T) {
	p, _ := newProgram(t, []string{"10 INPUT N", "20 PRINT N"})
	if err := p.Run(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestProcessLineErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  fault.Kind
	}{
		{"GOTO 10", fault.Syntax},
		{"IF 1 = 1 THEN 10", fault.Syntax},
		{"END", fault.Syntax},
		{"REM hi", fault.Syntax},
		{"LET A = 1 $", fault.Lexical},
		{"PRINT B", 0},
		{"LET C = B", fault.UndefinedVariable},
		{"PRINT 1 / 0", fault.DivisionByZero},
		{"0 PRINT 1", fault.Syntax},
		{"   ", 0},
	}

	for i, tt := range tests {
		p, _ := newProgram(t, nil)
		err := p.ProcessLine(tt.input)
		if fault.KindOf(err) != tt.kind {
			t.Fatalf("tests[%d] - %q expected kind %s, got %v", i, tt.input, tt.kind, err)
		}
		if tt.kind == 0 && err != nil {
			t.Fatalf("tests[%d] - %q unexpected error %v", i, tt.input, err)
		}
		if p.Len() != 0 {
			t.Fatalf("tests[%d] - %q stored a line", i, tt.input)
		}
	}
}

func TestExecuteRejectsControlTransfer(t *testing.T) {
	p, _ := newProgram(t, nil)
	for _, stmt := range []ast.Statement{&ast.EndStatement{}, &ast.GotoStatement{Target: 10}} {
		if err := p.Execute(stmt); !fault.Is(err, fault.Syntax) {
			t.Fatalf("Execute(%s) expected syntax fault, got %v", stmt.String(), err)
		}
	}
}

func TestLoad(t *testing.T) {
	p, out := newProgram(t, []string{"5 PRINT 5"})
	src := "10 LET A = 2\n\n20 PRINT A * 21\n   \n5\n"
	if err := p.Load(strings.NewReader(src)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(p.Lines(), []string{"10 LET A = 2", "20 PRINT A * 21"}) {
		t.Fatalf("lines wrong. got=%q", p.Lines())
	}
	if err := p.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}

func TestLoadFailureLeavesProgram(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"10 PRINT 1\n\nLET A = 1\n", "line 3: SYNTAX ERROR: program lines need a line number"},
		{"10 PRINT 1\n20 PRINT #\n", "line 2: INVALID CHARACTER"},
		{"10 PRINT\n", "line 1: SYNTAX ERROR"},
	}

	for i, tt := range tests {
		p, _ := newProgram(t, []string{"1 PRINT 0"})
		err := p.Load(strings.NewReader(tt.src))
		if err == nil || !strings.HasPrefix(err.Error(), tt.expected) {
			t.Fatalf("tests[%d] - expected error starting %q, got %v", i, tt.expected, err)
		}
		if !reflect.DeepEqual(p.Lines(), []string{"1 PRINT 0"}) {
			t.Fatalf("tests[%d] - program changed: %q", i, p.Lines())
		}
	}
}

func TestLoadOverlongLine(t *testing.T) {
	p, _ := newProgram(t, []string{"1 PRINT 0"})
	src := "10 PRINT 1\n20 REM " + strings.Repeat("x", MaxLineLength) + "\n"
	err := p.Load(strings.NewReader(src))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "line 2: ") {
		t.Fatalf("error should name line 2, got %v", err)
	}
	if !reflect.DeepEqual(p.Lines(), []string{"1 PRINT 0"}) {
		t.Fatalf("program changed: %q", p.Lines())
	}
}
