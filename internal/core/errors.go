package core

import (
	"errors"
	"fmt"
)

// ValidationError reports a required field that is empty or malformed.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateNameError is returned when a contact name clashes, ignoring case,
// with an existing contact.
type DuplicateNameError struct {
	Name     string
	Existing Contact
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("contact %q already exists as %q", e.Name, e.Existing.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the kind and id that were missing.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
