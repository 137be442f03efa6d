// Package repl is the interactive read loop: it dispatches the interpreter
// commands RUN, LIST, CLEAR, QUIT and HELP and hands every other line to a
// Program.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"tinybasic/pkg/eval"
	"tinybasic/pkg/fault"
	"tinybasic/pkg/program"
)

const HelpText = `Supported commands:
  General statements (with line number):
    REM <comment> - Comment line (ignored)
    LET <var> = <expr> - Assign expression result to variable
    PRINT <expr> - Evaluate expression and print result
    INPUT <var> - Prompt with '?', read integer into variable
    END - Terminate program execution
    GOTO <line> - Jump to specified line number
    IF <expr1> <op> <expr2> THEN <line> - Conditional jump (op: =, <, >)
  Immediate execution (without line number): LET, PRINT, INPUT
  Interpreter commands:
    RUN - Execute program from lowest line number
    LIST - Display all program lines in order
    CLEAR - Remove all program lines
    QUIT - Exit the interpreter
    HELP - Show this help message
`

type Option func(*Session)

// WithPrompt sets the prompt shown before each line is read.
func WithPrompt(prompt string) Option {
	return func(s *Session) { s.prompt = prompt }
}

// WithErrorStyle decorates diagnostics before they are written.
func WithErrorStyle(style func(string) string) Option {
	return func(s *Session) { s.style = style }
}

func WithProgramOptions(opts ...program.Option) Option {
	return func(s *Session) { s.progOpts = append(s.progOpts, opts...) }
}

// Session reads lines from one Input and writes everything, diagnostics
// included, to one writer. INPUT statements read from the same Input.
type Session struct {
	in       eval.Input
	out      io.Writer
	prompt   string
	style    func(string) string
	progOpts []program.Option

	prog *program.Program
}

func New(in eval.Input, out io.Writer, opts ...Option) *Session {
	s := &Session{in: in, out: out}
	for _, opt := range opts {
		opt(s)
	}
	s.prog = program.New(out, in, s.progOpts...)
	return s
}

func (s *Session) Program() *program.Program { return s.prog }

// Run reads and handles lines until QUIT or end of input.
func (s *Session) Run() error {
	for {
		line, err := s.in.ReadLine(s.prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrLineTooLong) {
			s.report(err)
			continue
		}
		if err != nil {
			return err
		}
		if s.Handle(line) {
			return nil
		}
	}
}

// Handle processes one line and reports whether the session should end.
func (s *Session) Handle(line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	var err error
	switch trimmed {
	case "QUIT":
		return true
	case "RUN":
		err = s.prog.Run()
	case "LIST":
		err = s.prog.List()
	case "CLEAR":
		s.prog.Clear()
	case "HELP":
		_, err = io.WriteString(s.out, HelpText)
	default:
		err = s.prog.ProcessLine(line)
	}

	if err != nil {
		s.report(err)
	}
	return false
}

func (s *Session) report(err error) {
	msg := Describe(err)
	if s.style != nil {
		msg = s.style(msg)
	}
	fmt.Fprintln(s.out, msg)
}

// Describe renders err as a one-line diagnostic, naming the program line for
// faults raised during RUN.
func Describe(err error) string {
	var fe *fault.Error
	if errors.As(err, &fe) && fe.Line > 0 {
		return fmt.Sprintf("%s (line %d)", err.Error(), fe.Line)
	}
	return err.Error()
}
