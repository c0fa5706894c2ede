package parser

import (
	"fmt"

	"github.com/flexjson/flexjson/ferr"
)

// Errors aggregates multiple parse errors for a single input. It
// implements the error interface and Go 1.20's multi-error Unwrap() []error
// convention so callers can use errors.Is/errors.As across every error a
// parse collected, not just the first.
type Errors struct {
	errs []*ferr.Error
}

// NewErrors wraps errs. Returns nil if errs is empty, so callers can
// write `return NewErrors(collected)` and get a nil error on success.
func NewErrors(errs []*ferr.Error) *Errors {
	if len(errs) == 0 {
		return nil
	}
	return &Errors{errs: errs}
}

// Error renders the first error, plus a count of any others.
func (e *Errors) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.errs[0].Error(), len(e.errs)-1)
}

// Errors returns the underlying errors in the order they were collected.
func (e *Errors) Errors() []*ferr.Error {
	return e.errs
}

// Count returns the number of collected errors.
func (e *Errors) Count() int {
	return len(e.errs)
}

// First returns the first collected error.
func (e *Errors) First() *ferr.Error {
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

// Unwrap exposes every collected error for errors.Is/errors.As.
func (e *Errors) Unwrap() []error {
	out := make([]error, len(e.errs))
	for i, err := range e.errs {
		out[i] = err
	}
	return out
}
