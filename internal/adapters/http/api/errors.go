package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
	ErrPanic      = errors.New("handler panicked")
)

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
