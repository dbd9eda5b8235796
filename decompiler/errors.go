package decompiler

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every *Error unwraps to exactly one of them.
var (
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrMalformedBytecode = errors.New("malformed bytecode")
	ErrInvariant         = errors.New("internal invariant violation")
)

// Kind classifies a decompilation failure.
type Kind int

const (
	// UnsupportedOpcode: no handler is registered for the instruction.
	UnsupportedOpcode Kind = iota + 1
	// MalformedBytecode: stack underflow, a lookahead that ran out of
	// instructions, or an argument of the wrong type.
	MalformedBytecode
	// InvariantViolation: a node of an unexpected shape where a specific
	// variant was required.
	InvariantViolation
)

func (k Kind) sentinel() error {
	switch k {
	case UnsupportedOpcode:
		return ErrUnsupportedOpcode
	case MalformedBytecode:
		return ErrMalformedBytecode
	}
	return ErrInvariant
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error reports a failed decompilation. Op, Line and Offset identify the
// instruction being folded when the failure was detected; Stack holds the
// s-expressions of the AST stack at that moment, bottom first.
type Error struct {
	Kind   Kind
	Op     string
	Line   int
	Offset int
	Detail string
	Stack  []string
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s at line %d (instruction %d)", e.Kind, e.Op, e.Line, e.Offset)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// StackDump renders the stack snapshot one entry per line, top last.
func (e *Error) StackDump() string {
	var sb strings.Builder
	for i, s := range e.Stack {
		fmt.Fprintf(&sb, "%3d  %s\n", i, s)
	}
	return sb.String()
}

// IsUnsupported reports whether err is an unsupported-opcode failure.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOpcode)
}
