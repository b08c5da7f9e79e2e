// Package core defines the entity types shared by the domain store, the
// utility packages, and the adapters, together with the error taxonomy all
// operations report failures through.
package core

import (
	"errors"
	"fmt"
)

// The four failure classes every operation in this module reports. Callers
// classify with errors.Is; adapters translate the class into a wire-level
// error kind via Classify.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("parse error")
	ErrComputation = errors.New("computation error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Parsef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func Computationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrComputation, fmt.Sprintf(format, args...))
}

// Classify maps an error to the stable kind string used in structured
// results and JSON responses.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrComputation):
		return "computation_error"
	default:
		return "internal_error"
	}
}
