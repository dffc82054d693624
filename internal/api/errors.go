package api

import (
	"errors"
	"net/http"

	"github.com/example/rpnd/internal/calc"
)

type errorMapping struct {
	err    error
	kind   string
	detail string
}

var errorTable = []errorMapping{
	{calc.ErrAlreadyExists, "already_exists", "Stack already exists"},
	{calc.ErrNotFound, "not_found", "Stack not found"},
	{calc.ErrEmptyStack, "empty_stack", "Stack is empty"},
	{calc.ErrInsufficientOperands, "insufficient_operands", "Not enough operands"},
	{calc.ErrDivisionByZero, "division_by_zero", "Division by zero"},
	{calc.ErrUnknownOperator, "unknown_operator", "Unknown operator"},
	{calc.ErrInvalidID, "invalid_id", "Stack id must not be empty"},
}

// classify returns a short kind label and user-facing detail for err.
func classify(err error) (kind, detail string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.kind, m.detail
		}
	}
	return "internal", "Internal error"
}

// statusFor maps a registry error to a status. Not-found is a 404 everywhere
// except operate, where every registry failure is a client error.
func statusFor(err error, notFoundIs404 bool) int {
	switch {
	case errors.Is(err, calc.ErrNotFound):
		if notFoundIs404 {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.Is(err, calc.ErrAlreadyExists),
		errors.Is(err, calc.ErrEmptyStack),
		errors.Is(err, calc.ErrInsufficientOperands),
		errors.Is(err, calc.ErrDivisionByZero),
		errors.Is(err, calc.ErrUnknownOperator),
		errors.Is(err, calc.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
