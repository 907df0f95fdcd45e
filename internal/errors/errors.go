package errors

import "fmt"

// ErrorCode represents a Scribe error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrInvalidPolicy  ErrorCode = "INVALID_POLICY"  // 422
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrExportFailed   ErrorCode = "EXPORT_FAILED"   // 500
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ScribeError represents a structured error with code, status, and details.
type ScribeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ScribeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ScribeError {
	return &ScribeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidPolicy creates a 422 error for a malformed retention policy.
// Policy validation rejects bad values outright; it never clamps them.
func NewInvalidPolicy(field, msg string) *ScribeError {
	return &ScribeError{
		Code:    ErrInvalidPolicy,
		Status:  422,
		Message: fmt.Sprintf("invalid retention policy: %s", msg),
		Details: map[string]any{"field": field},
	}
}

// NewNotFound creates a 404 error for when a transcript cannot be found.
func NewNotFound(identifier string) *ScribeError {
	return &ScribeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("transcript not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *ScribeError {
	return &ScribeError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewExportFailed creates a 500 error for export serialization or write failures.
// The in-memory report that produced the export stays valid; only the artifact
// write failed.
func NewExportFailed(format string, err error) *ScribeError {
	return &ScribeError{
		Code:    ErrExportFailed,
		Status:  500,
		Message: fmt.Sprintf("export (%s) failed: %v", format, err),
		Details: map[string]any{"format": format},
	}
}

// NewCancelled creates a 499 error for a cancelled operation.
func NewCancelled(operation string) *ScribeError {
	return &ScribeError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ScribeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ScribeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ScribeError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*ScribeError); ok {
		return sErr.Code == code
	}
	return false
}
