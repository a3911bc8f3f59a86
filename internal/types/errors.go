package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced while building or rendering a query
// graph matches exactly one of these with errors.Is.
var (
	// ErrInvalidJoin is returned when a join target has no alias.
	ErrInvalidJoin = errors.New("invalid join")
	// ErrUnsupportedSyntax is returned when the active dialect cannot express
	// a predicate, operator or clause combination.
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
	// ErrInvalidOperand is returned when a comparison receives the wrong number
	// or kind of values.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrConcurrencyConflict is returned when a concurrency-checked save
	// affects no rows.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrMalformedGraph is returned when a graph violates a structural
	// invariant (unbalanced parentheses, dangling node ids, cycles).
	ErrMalformedGraph = errors.New("malformed graph")
)

// Error carries the operation that failed alongside its kind.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the error kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}
