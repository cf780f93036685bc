package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrExceedsBalance    = errors.New("amount exceeds balance")
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence failure")
)

// ShortfallError reports how much of a resource was available against what a
// request needed. It unwraps to ErrInsufficientStock or ErrExceedsBalance.
type ShortfallError struct {
	Resource  string
	Unit      string
	Available float64
	Required  float64
	kind      error
}

func NewStockShortfall(resource string, unit string, available float64, required float64) *ShortfallError {
	return &ShortfallError{Resource: resource, Unit: unit, Available: available, Required: required, kind: ErrInsufficientStock}
}

func NewBalanceShortfall(resource string, available float64, required float64) *ShortfallError {
	return &ShortfallError{Resource: resource, Unit: "INR", Available: available, Required: required, kind: ErrExceedsBalance}
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: %s available %.2f %s, required %.2f %s", e.kind, e.Resource, e.Available, e.Unit, e.Required, e.Unit)
}

func (e *ShortfallError) Unwrap() error {
	return e.kind
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
