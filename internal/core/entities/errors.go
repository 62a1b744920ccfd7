// Package entities contains the domain entities for hivemind.
// These are pure Go structs with validation logic and zero external dependencies.
package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrInvalidName = errors.New("name contains invalid characters")
	ErrEmptyID     = errors.New("id cannot be empty")
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrNoActiveTemplate = errors.New("no active template")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Entity  string // Entity type (e.g., "Template", "Note")
	Field   string // Field that failed validation
	Value   string // The invalid value (may be truncated)
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error.
func NewValidationError(entity, field, value, message string, err error) *ValidationError {
	if len(value) > 50 {
		value = value[:47] + "..."
	}
	return &ValidationError{
		Entity:  entity,
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d validation errors:\n", len(ve)))
	for i, err := range ve {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return b.String()
}

// HasErrors returns true if there are validation errors.
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add appends a validation error to the collection.
func (ve *ValidationErrors) Add(entity, field, value, message string, err error) {
	*ve = append(*ve, NewValidationError(entity, field, value, message, err))
}

// NotFoundError represents an entity not found error.
type NotFoundError struct {
	Entity string
	ID     string
	Parent string // Optional parent context
}

func (e *NotFoundError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("%s '%s' not found in %s", e.Entity, e.ID, e.Parent)
	}
	return fmt.Sprintf("%s '%s' not found", e.Entity, e.ID)
}

// DuplicateError represents a duplicate entity error.
type DuplicateError struct {
	Entity string
	ID     string
	Parent string
}

func (e *DuplicateError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("%s '%s' already exists in %s", e.Entity, e.ID, e.Parent)
	}
	return fmt.Sprintf("%s '%s' already exists", e.Entity, e.ID)
}

// ConfigError represents a fatal configuration problem (missing file, malformed
// TOML, schema violation). Callers should exit with code 2.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config error (%s): %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TemplateError represents a meta-schema violation raised at template
// registration time: duplicate ids, missing reverse relationship ids, etc.
type TemplateError struct {
	TemplateID string
	Message    string
	Err        error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q invalid: %s", e.TemplateID, e.Message)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// ParseError represents a per-file Markdown parse failure. It is never fatal;
// the offending file is skipped and the diagnostic collected.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error (%s): %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError represents a Storage Engine failure. Transient indicates the
// operation is safe to retry with backoff; fatal storage corruption requires
// a rebuild instead.
type StorageError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StorageError) Error() string {
	if e.Transient {
		return fmt.Sprintf("storage error (%s, transient): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage error (%s, fatal): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WatchError represents loss of the filesystem watcher (e.g. OS inotify limit
// exceeded). Callers should fall back to polling.
type WatchError struct {
	Message string
	Err     error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watch error: %s", e.Message)
}

func (e *WatchError) Unwrap() error { return e.Err }

// UnknownToolError is returned by the dispatcher when a tool call names a
// tool that does not exist in the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// InvalidToolArgsError is returned by the dispatcher when a tool call's
// arguments fail the tool's input schema.
type InvalidToolArgsError struct {
	Tool    string
	Message string
}

func (e *InvalidToolArgsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Message)
}
