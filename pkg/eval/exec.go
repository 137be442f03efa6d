package eval

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/fault"
)

// Flow is the control transfer requested by an executed statement.
type Flow uint8

const (
	Continue Flow = iota // fall through to the next line
	Jump                 // continue at Outcome.Target
	Halt                 // stop the program
)

func (f Flow) String() string {
	switch f {
	case Continue:
		return "CONTINUE"
	case Jump:
		return "JUMP"
	case Halt:
		return "HALT"
	default:
		return "INVALID"
	}
}

type Outcome struct {
	Flow   Flow
	Target int
}

func Next() Outcome           { return Outcome{Flow: Continue} }
func JumpTo(line int) Outcome { return Outcome{Flow: Jump, Target: line} }
func Stop() Outcome           { return Outcome{Flow: Halt} }

func (o Outcome) String() string {
	if o.Flow == Jump {
		return fmt.Sprintf("JUMP %d", o.Target)
	}
	return o.Flow.String()
}

// Input is a blocking source of lines. The prompt is shown before waiting.
type Input interface {
	ReadLine(prompt string) (string, error)
}

var ErrNoInput = errors.New("no input source")

// DefaultInputPrompt is shown by INPUT while it waits for a number.
const DefaultInputPrompt = "?"

// Env is everything a statement may touch while it executes.
type Env struct {
	Vars        *VarState
	Out         io.Writer
	In          Input
	InputPrompt string
}

// Execute runs one statement. It never changes the instruction pointer
// itself; GOTO and a true IF report the jump in the returned Outcome and the
// caller checks that the target line exists.
func Execute(stmt ast.Statement, env *Env) (Outcome, error) {
	switch stmt := stmt.(type) {
	case *ast.LetStatement:
		val, err := Eval(stmt.Value, env.Vars)
		if err != nil {
			return Next(), err
		}
		env.Vars.Set(stmt.Name.Value, val)
		return Next(), nil

	case *ast.PrintStatement:
		return Next(), execPrint(stmt, env)

	case *ast.InputStatement:
		return Next(), execInput(stmt, env)

	case *ast.GotoStatement:
		return JumpTo(stmt.Target), nil

	case *ast.IfStatement:
		return execIf(stmt, env)

	case *ast.RemStatement:
		return Next(), nil

	case *ast.EndStatement:
		return Stop(), nil

	case nil:
		return Next(), fault.New(fault.Syntax, "missing statement")

	default:
		return Next(), fault.New(fault.Syntax, "unsupported statement %s", stmt.String())
	}
}

// execPrint reports an undefined variable as an output line instead of
// failing the statement.
func execPrint(stmt *ast.PrintStatement, env *Env) error {
	val, err := Eval(stmt.Value, env.Vars)
	if fault.Is(err, fault.UndefinedVariable) {
		_, werr := fmt.Fprintln(env.Out, fault.UndefinedVariable.String())
		return werr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Out, val)
	return err
}

// execInput prompts until a valid integer arrives.
func execInput(stmt *ast.InputStatement, env *Env) error {
	if env.In == nil {
		return ErrNoInput
	}
	prompt := env.InputPrompt
	if prompt == "" {
		prompt = DefaultInputPrompt
	}

	for {
		text, err := env.In.ReadLine(prompt)
		if err != nil {
			return fmt.Errorf("INPUT %s: %w", stmt.Name.Value, err)
		}
		val, err := ParseNumber(text)
		if err != nil {
			if _, werr := fmt.Fprintln(env.Out, err.Error()); werr != nil {
				return werr
			}
			continue
		}
		env.Vars.Set(stmt.Name.Value, val)
		return nil
	}
}

// ParseNumber validates INPUT text: surrounding whitespace is ignored and the
// rest must be an optionally signed decimal integer that fits in int64.
func ParseNumber(text string) (int64, error) {
	val, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fault.New(fault.InputFormat, "")
	}
	return val, nil
}

func execIf(stmt *ast.IfStatement, env *Env) (Outcome, error) {
	left, err := Eval(stmt.Left, env.Vars)
	if err != nil {
		return Next(), err
	}
	right, err := Eval(stmt.Right, env.Vars)
	if err != nil {
		return Next(), err
	}
	ok, err := Compare(stmt.Operator, left, right)
	if err != nil {
		return Next(), err
	}
	if ok {
		return JumpTo(stmt.Target), nil
	}
	return Next(), nil
}
