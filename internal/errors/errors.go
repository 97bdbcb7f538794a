package errors

import "fmt"

// ErrorCode represents a Recall error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrInvalidProject  ErrorCode = "INVALID_PROJECT"  // 400
	ErrInvalidCategory ErrorCode = "INVALID_CATEGORY" // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// RecallError represents a structured error with code, status, and details.
//
// Only malformed top-level query parameters surface to callers as errors.
// Per-candidate and per-root failures are absorbed by the engine (logged and
// skipped), and a query with no matches is a successful empty result, not an
// error.
type RecallError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RecallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RecallError {
	return &RecallError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidProject creates a 400 error for a project name that fails the
// allow-listed character pattern.
func NewInvalidProject(project string) *RecallError {
	return &RecallError{
		Code:    ErrInvalidProject,
		Status:  400,
		Message: fmt.Sprintf("invalid project name: %q", project),
		Details: map[string]any{"project": project},
	}
}

// NewInvalidCategory creates a 400 error for a category name that fails the
// allow-listed character pattern.
func NewInvalidCategory(category string) *RecallError {
	return &RecallError{
		Code:    ErrInvalidCategory,
		Status:  400,
		Message: fmt.Sprintf("invalid category name: %q", category),
		Details: map[string]any{"category": category},
	}
}

// NewNotFound creates a 404 error for a missing named resource.
func NewNotFound(identifier string) *RecallError {
	return &RecallError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RecallError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RecallError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a RecallError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*RecallError); ok {
		return rErr.Code == code
	}
	return false
}
