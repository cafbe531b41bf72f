package service

import "github.com/and161185/sales-intel/internal/errs"

// InputError is a validation failure with a message meant for the end user.
// It matches errs.ErrInvalidInput.
type InputError struct{ Detail string }

func (e *InputError) Error() string { return "invalid input: " + e.Detail }

// Is reports errs.ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == errs.ErrInvalidInput }

func invalid(detail string) error { return &InputError{Detail: detail} }
