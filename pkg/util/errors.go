// Package util provides logging, error types and small parsing helpers
// shared by the topocheck packages.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Data defects in a document are never errors; these cover
// bad requests, unreadable input and unreachable stores.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrNotConnected     = errors.New("store not connected")
)

// ValidationError collects structural problems found while reading a document
type ValidationError struct {
	Source string
	Errors []string
}

func (e *ValidationError) Error() string {
	prefix := "validation failed"
	if e.Source != "" {
		prefix += " for " + e.Source
	}
	if len(e.Errors) == 1 {
		return prefix + ": " + e.Errors[0]
	}
	return fmt.Sprintf("%s:\n  - %s", prefix, strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	source string
	errors []string
}

// NewValidationBuilder returns a builder whose error names the given source
func NewValidationBuilder(source string) *ValidationBuilder {
	return &ValidationBuilder{source: source}
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Source: v.source, Errors: v.errors}
}

// NotFoundError names a missing resource such as a stored snapshot
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}
