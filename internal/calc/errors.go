package calc

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when creating a stack whose id is taken.
	ErrAlreadyExists = errors.New("stack already exists")
	// ErrNotFound is returned when an operation references an unknown stack.
	ErrNotFound = errors.New("stack not found")
	// ErrEmptyStack is returned when popping a stack with no elements.
	ErrEmptyStack = errors.New("stack is empty")
	// ErrInsufficientOperands is returned when an operator needs more values than the stack holds.
	ErrInsufficientOperands = errors.New("not enough operands")
	// ErrDivisionByZero is returned when dividing by an exact zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownOperator is returned for operator symbols outside + - * /.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrInvalidID is returned when creating a stack with an empty id.
	ErrInvalidID = errors.New("stack id must not be empty")
)

// StackError describes a failed registry operation.
type StackError struct {
	// Op is the registry method that failed (create, push, pop, ...).
	Op string
	// StackID is the stack the operation referenced.
	StackID string
	// Operator is the arithmetic symbol for failed operate calls.
	Operator string
	// Err is one of the Err* sentinels above.
	Err error
}

func (e *StackError) Error() string {
	if e == nil {
		return "stack error"
	}
	if e.Operator != "" {
		return fmt.Sprintf("%s %q on stack %q: %v", e.Op, e.Operator, e.StackID, e.Err)
	}
	return fmt.Sprintf("%s stack %q: %v", e.Op, e.StackID, e.Err)
}

func (e *StackError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsStackError reports whether err carries a StackError and returns it.
func AsStackError(err error) (*StackError, bool) {
	var target *StackError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func newError(op, id string, err error) error {
	return &StackError{Op: op, StackID: id, Err: err}
}
