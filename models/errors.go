package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is wrapped by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError carries field-level messages for a rejected request.
// Validation always runs before any database interaction, so a request
// that fails here never touches inventory.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnknownSKUError is returned when an order line references a flavor that
// does not exist, for example one deleted while the cart was open.
type UnknownSKUError struct {
	FlavorID int64
}

func (e *UnknownSKUError) Error() string {
	return fmt.Sprintf("unknown flavor id %d", e.FlavorID)
}

// InsufficientStockError names the offending SKU and how many units are
// actually available, so the storefront can tell the customer precisely.
type InsufficientStockError struct {
	FlavorID  int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %q (flavor %d): requested %d, available %d",
		e.Name, e.FlavorID, e.Requested, e.Available)
}

// InvalidTransitionError is returned when a status update would skip a
// lifecycle state.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}
