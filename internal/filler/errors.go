package filler

import (
	"errors"
	"fmt"
)

// ErrNoLocator means the schema has an empty locator for the field.
var ErrNoLocator = errors.New("schema has no locator for field")

// ErrNoValue means the profile has nothing to put in the field.
var ErrNoValue = errors.New("profile has no value for field")

// ElementError represents a field whose element could not be located or set.
// It is recorded in the fill report and never returned to callers.
type ElementError struct {
	Field   string
	Locator string
	Cause   error
}

func (e *ElementError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("element not interactable for %s (%s): %v", e.Field, e.Locator, e.Cause)
	}
	return fmt.Sprintf("element not interactable for %s (%s)", e.Field, e.Locator)
}

func (e *ElementError) Unwrap() error {
	return e.Cause
}
