// SPDX-License-Identifier: MIT

// Package validate provides field validation for settings overrides, preset
// tables and the application configuration.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Error represents a validation error
type Error struct {
	Field   string      // Field name that failed validation
	Value   interface{} // The invalid value
	Message string      // Human-readable error message
}

// Error implements the error interface
func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors and can produce a ValidationError when invalid.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// SectionName validates an INI section name. The name is written between
// brackets on its own line, so it must be single-line and must not contain
// brackets itself.
func (v *Validator) SectionName(field, name string) {
	if strings.TrimSpace(name) == "" {
		v.AddError(field, "section name cannot be empty", name)
		return
	}
	if name != strings.TrimSpace(name) {
		v.AddError(field, "section name cannot start or end with whitespace", name)
		return
	}
	if strings.ContainsAny(name, "\r\n") {
		v.AddError(field, "section name cannot contain line breaks", name)
		return
	}
	if strings.ContainsAny(name, "[]") {
		v.AddError(field, "section name cannot contain '[' or ']'", name)
		return
	}
	if !utf8.ValidString(name) {
		v.AddError(field, "section name is not valid UTF-8", name)
	}
}

// KeyName validates an INI key. A key is everything before the first '=' of
// its line, so '=' is not allowed, and a leading ';' or '#' would turn the
// line into a comment.
func (v *Validator) KeyName(field, key string) {
	if strings.TrimSpace(key) == "" {
		v.AddError(field, "key cannot be empty", key)
		return
	}
	if key != strings.TrimSpace(key) {
		v.AddError(field, "key cannot start or end with whitespace", key)
		return
	}
	if strings.ContainsAny(key, "\r\n") {
		v.AddError(field, "key cannot contain line breaks", key)
		return
	}
	if strings.Contains(key, "=") {
		v.AddError(field, "key cannot contain '='", key)
		return
	}
	if key[0] == ';' || key[0] == '#' || key[0] == '[' {
		v.AddError(field, fmt.Sprintf("key cannot start with %q", key[0]), key)
		return
	}
	if !utf8.ValidString(key) {
		v.AddError(field, "key is not valid UTF-8", key)
	}
}

// SettingValue validates an INI value. Values are stored verbatim, so
// anything the parser would not read back unchanged is rejected: line breaks
// and surrounding whitespace.
func (v *Validator) SettingValue(field, value string) {
	if strings.ContainsAny(value, "\r\n") {
		v.AddError(field, "value cannot contain line breaks", value)
		return
	}
	if value != strings.TrimSpace(value) {
		v.AddError(field, "value cannot start or end with whitespace", value)
		return
	}
	if !utf8.ValidString(value) {
		v.AddError(field, "value is not valid UTF-8", value)
	}
}

// NotEmpty validates that a string is not empty or whitespace-only
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("value must be one of %v, got %q", allowed, value),
		value)
}

// AbsolutePath validates that an optional path is absolute once set.
func (v *Validator) AbsolutePath(field, path string) {
	if path == "" {
		return
	}
	if !filepath.IsAbs(path) {
		v.AddError(field, fmt.Sprintf("must be an absolute path, got %s", path), path)
	}
}
