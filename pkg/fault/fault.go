// Package fault defines the error kinds raised while lexing, parsing and
// running BASIC lines.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fault.
type Kind uint8

const (
	Lexical Kind = iota + 1
	Syntax
	UndefinedVariable
	DivisionByZero
	LineNumber
	InputFormat
	StepLimit
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "INVALID CHARACTER"
	case Syntax:
		return "SYNTAX ERROR"
	case UndefinedVariable:
		return "VARIABLE NOT DEFINED"
	case DivisionByZero:
		return "DIVIDE BY ZERO"
	case LineNumber:
		return "LINE NUMBER ERROR"
	case InputFormat:
		return "INVALID NUMBER"
	case StepLimit:
		return "STEP LIMIT EXCEEDED"
	default:
		return "UNKNOWN ERROR"
	}
}

// Error is a BASIC fault. Line is the program line being executed when the
// fault was raised, or 0 outside a run.
type Error struct {
	Kind   Kind
	Detail string
	Line   int
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is matches any *Error of the same kind, so errors.Is(err, fault.New(k, ""))
// works regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Detail: detail}
}

// Is reports whether err is, or wraps, a fault of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the fault in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// AtLine records the executing line on a fault that has none yet.
func AtLine(err error, line int) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Line = line
	}
	return err
}
