// Package program runs stored BASIC programs and executes immediate-mode
// statements against a shared variable store.
package program

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/eval"
	"tinybasic/pkg/fault"
	"tinybasic/pkg/parser"
	"tinybasic/pkg/recorder"
)

// MaxLineLength is the longest source line accepted, in bytes.
const MaxLineLength = 1 << 20

type Option func(*Program)

// WithMaxSteps bounds every run to n executed statements. Zero means no bound.
func WithMaxSteps(n int) Option {
	return func(p *Program) { p.maxSteps = n }
}

func WithInputPrompt(prompt string) Option {
	return func(p *Program) { p.inputPrompt = prompt }
}

// Program owns the stored lines and the variables. pc and ended are only
// meaningful while Run is on the stack.
type Program struct {
	lines *recorder.Recorder
	vars  *eval.VarState
	env   *eval.Env

	inputPrompt string
	maxSteps    int

	pc    int
	ended bool
}

func New(out io.Writer, in eval.Input, opts ...Option) *Program {
	p := &Program{
		lines:       recorder.New(),
		vars:        eval.NewVarState(),
		inputPrompt: eval.DefaultInputPrompt,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.env = &eval.Env{Vars: p.vars, Out: out, In: in, InputPrompt: p.inputPrompt}
	return p
}

func (p *Program) AddStmt(line int, stmt ast.Statement) {
	p.lines.Add(line, stmt)
}

func (p *Program) RemoveStmt(line int) {
	p.lines.Remove(line)
}

func (p *Program) HasLine(line int) bool { return p.lines.HasLine(line) }

func (p *Program) Len() int { return p.lines.Len() }

func (p *Program) Vars() *eval.VarState { return p.vars }

// PC returns the instruction pointer; 0 outside a run.
func (p *Program) PC() int { return p.pc }

// Walk visits the stored lines in order until fn returns false.
func (p *Program) Walk(fn func(line int, stmt ast.Statement) bool) {
	p.lines.Ascend(fn)
}

func (p *Program) resetAfterRun() {
	p.pc = 0
	p.ended = false
}

// Run executes the stored program from its lowest line. Faults are returned
// with the failing line recorded; the stored lines and variables are left as
// the failing statement found them.
func (p *Program) Run() error {
	p.resetAfterRun()
	defer p.resetAfterRun()

	first, ok := p.lines.NextLine(0)
	if !ok {
		return nil
	}
	p.pc = first

	steps := 0
	for !p.ended {
		stmt, ok := p.lines.Get(p.pc)
		if !ok {
			p.ended = true
			break
		}
		if p.maxSteps > 0 && steps >= p.maxSteps {
			return fault.AtLine(fault.New(fault.StepLimit, "%d statements", p.maxSteps), p.pc)
		}
		steps++

		before := p.pc
		outcome, err := eval.Execute(stmt, p.env)
		if err != nil {
			return fault.AtLine(err, before)
		}

		switch outcome.Flow {
		case eval.Halt:
			p.ended = true
		case eval.Jump:
			if !p.lines.HasLine(outcome.Target) {
				return fault.AtLine(fault.New(fault.LineNumber, "no line %d", outcome.Target), before)
			}
			p.pc = outcome.Target
		default:
			next, ok := p.lines.NextLine(before)
			if !ok {
				p.ended = true
				break
			}
			p.pc = next
		}
	}
	return nil
}

// Execute runs one statement outside any run. Statements that transfer
// control have no meaning here and are rejected.
func (p *Program) Execute(stmt ast.Statement) error {
	outcome, err := eval.Execute(stmt, p.env)
	if err != nil {
		return err
	}
	if outcome.Flow != eval.Continue {
		return fault.New(fault.Syntax, "%s needs a line number", stmt.String())
	}
	return nil
}

// Lines renders the stored program in line order, one "<line> <text>" string
// per line.
func (p *Program) Lines() []string {
	out := make([]string, 0, p.lines.Len())
	p.lines.Ascend(func(line int, stmt ast.Statement) bool {
		text := stmt.SourceText()
		if text == "" {
			text = stmt.String()
		}
		out = append(out, strconv.Itoa(line)+" "+text)
		return true
	})
	return out
}

func (p *Program) List() error {
	for _, line := range p.Lines() {
		if _, err := fmt.Fprintln(p.env.Out, line); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every stored line and every variable.
func (p *Program) Clear() {
	p.lines.Clear()
	p.vars.Clear()
	p.resetAfterRun()
}

// ProcessLine routes one line of input: numbered lines are stored (a bare
// number deletes), unnumbered statements run immediately.
func (p *Program) ProcessLine(text string) error {
	line, err := parser.ParseLine(text)
	if err != nil {
		return err
	}
	switch {
	case line.IsDeletion():
		p.RemoveStmt(line.Number)
	case line.HasNumber():
		p.AddStmt(line.Number, line.Statement)
	case line.Statement != nil:
		return p.Execute(line.Statement)
	}
	return nil
}

// Load reads a program file. Every non-blank line must be numbered. Lines are
// applied only if the whole file parses; otherwise the first failure is
// returned as "line N: ..." and the current program is untouched.
func (p *Program) Load(r io.Reader) error {
	var parsed []*ast.ParsedLine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength+1)
	n := 0
	for scanner.Scan() {
		n++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		line, err := parser.ParseLine(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if !line.HasNumber() {
			return fmt.Errorf("line %d: %w", n, fault.New(fault.Syntax, "program lines need a line number"))
		}
		parsed = append(parsed, line)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("line %d: longer than %d bytes: %w", n+1, MaxLineLength, err)
		}
		return err
	}

	for _, line := range parsed {
		if line.IsDeletion() {
			p.RemoveStmt(line.Number)
			continue
		}
		p.AddStmt(line.Number, line.Statement)
	}
	return nil
}
