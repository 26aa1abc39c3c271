package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an autofill error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrImportFailed   ErrorCode = "IMPORT_FAILED"   // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrPersistence    ErrorCode = "PERSISTENCE"     // 507
)

// Fixed messages for write-path failures. Callers show these to the user.
const (
	MsgSaveProfile   = "failed to save profile"
	MsgDeleteProfile = "failed to delete profile"
	MsgSaveSettings  = "failed to save settings"
	MsgImport        = "error importing data, please check the file format"
)

// AutofillError represents a structured error with code, status, and details.
type AutofillError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *AutofillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying store error, if any.
func (e *AutofillError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AutofillError {
	return &AutofillError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidProfile creates a 400 error listing every validation problem.
func NewInvalidProfile(problems []string) *AutofillError {
	return &AutofillError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: fmt.Sprintf("invalid profile: %v", problems),
		Details: map[string]any{"problems": problems},
	}
}

// NewNotFound creates a 404 error for when a profile cannot be found.
func NewNotFound(id string) *AutofillError {
	return &AutofillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("profile not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *AutofillError {
	return &AutofillError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewImportFailed creates a 422 error for a document that could not be imported.
func NewImportFailed() *AutofillError {
	return &AutofillError{
		Code:    ErrImportFailed,
		Status:  422,
		Message: MsgImport,
	}
}

// NewPersistence creates a 507 error for a rejected store write.
// msg should be one of the fixed Msg* constants; err is kept for errors.Is.
func NewPersistence(msg string, err error) *AutofillError {
	return &AutofillError{
		Code:    ErrPersistence,
		Status:  507,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error goes to Details for logging.
func NewInternal(err error) *AutofillError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &AutofillError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if err is, or wraps, an AutofillError with the given code.
func Is(err error, code ErrorCode) bool {
	var aErr *AutofillError
	if stderrors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}
