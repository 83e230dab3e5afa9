package resolver

import "fmt"

// ServiceError represents a failure calling the inference service
type ServiceError struct {
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("form resolution service failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("form resolution service failed: %s", e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model response that does not hold a well-formed form schema
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("form resolution parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("form resolution parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
