package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cookbook/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// ValidationError collects every invalid field of a request so the caller
// can report them together.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Err returns e when it holds at least one message, otherwise nil.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// ConflictError reports that a name collides with an existing record,
// directly or through a plural or synonym form.
type ConflictError struct {
	Entity string
	Field  string
	ID     int64
	Name   string
	Terms  []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("similar %s already exists: %q (ID: %d)", e.Entity, e.Name, e.ID)
}

// Detail is the user-facing explanation.
func (e *ConflictError) Detail() string {
	if len(e.Terms) == 0 {
		return fmt.Sprintf("%s conflict with %q (ID: %d).", capitalize(e.Entity), e.Name, e.ID)
	}
	return fmt.Sprintf("%s conflict with %q (ID: %d). Terms like %q are considered duplicates.",
		capitalize(e.Entity), e.Name, e.ID, strings.Join(e.Terms, ", "))
}

// ReferenceError reports a related record that is missing, or one that
// cannot be deleted because others still point at it.
type ReferenceError struct {
	Entity string
	ID     int64
	Field  string
	InUse  bool
	Usage  string
}

func (e *ReferenceError) Error() string {
	if e.InUse {
		return fmt.Sprintf("%s %d is still used by %s", e.Entity, e.ID, e.Usage)
	}
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// notFound maps gorm's miss to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// uniqueConflict turns a unique-index violation that slipped past the
// conflict checks (a concurrent writer) into a ConflictError.
func uniqueConflict(err error, entity, field, name string) error {
	if repository.IsUniqueViolation(err) {
		return &ConflictError{Entity: entity, Field: field, Name: name}
	}
	return err
}
