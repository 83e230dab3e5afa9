package apply

import (
	"fmt"
	"strings"
)

// NavigationExhaustedError represents a redirect chain that never reached a form
type NavigationExhaustedError struct {
	Hops    int
	LastURL string
}

func (e *NavigationExhaustedError) Error() string {
	return fmt.Sprintf("no application form found after %d redirect hops (last url %s)", e.Hops, e.LastURL)
}

// LoginError represents rejected credentials or a login page without the expected controls
type LoginError struct {
	Platform string
	Message  string
	Cause    error
}

func (e *LoginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s login failed: %s: %v", e.Platform, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s login failed: %s", e.Platform, e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

// MissingControlError represents a fixed control (apply button, form, submit) absent from the page
type MissingControlError struct {
	Control string
	URL     string
}

func (e *MissingControlError) Error() string {
	return fmt.Sprintf("%s not found on %s", e.Control, e.URL)
}

// IncompleteFormError represents required fields that could not be filled; submit is not attempted
type IncompleteFormError struct {
	Missing []string
}

func (e *IncompleteFormError) Error() string {
	return fmt.Sprintf("required fields not filled: %s", strings.Join(e.Missing, ", "))
}
