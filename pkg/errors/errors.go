package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common error cases
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request lacks valid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user doesn't have permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserExists indicates a user with the same email already exists
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates the provided credentials are invalid
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the session token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrGitHubAuthRequired indicates the user has no linked GitHub token
	ErrGitHubAuthRequired = errors.New("github authentication required")

	// ErrInvalidRepositoryURL indicates a repository URL could not be parsed
	ErrInvalidRepositoryURL = errors.New("invalid repository url")

	// ErrUpstream indicates a remote service (GitHub, Gemini) failed
	ErrUpstream = errors.New("upstream service error")

	// ErrStorageError indicates a log archive operation failed
	ErrStorageError = errors.New("storage error")

	// ErrDatabaseError indicates a database operation failed
	ErrDatabaseError = errors.New("database error")
)

// ErrorCode represents HTTP-like error codes
type ErrorCode int

const (
	CodeBadRequest          ErrorCode = http.StatusBadRequest
	CodeUnauthorized        ErrorCode = http.StatusUnauthorized
	CodeForbidden           ErrorCode = http.StatusForbidden
	CodeNotFound            ErrorCode = http.StatusNotFound
	CodeConflict            ErrorCode = http.StatusConflict
	CodeInternalServerError ErrorCode = http.StatusInternalServerError
	CodeBadGateway          ErrorCode = http.StatusBadGateway
	CodeServiceUnavailable  ErrorCode = http.StatusServiceUnavailable
)

// Slug returns the machine-readable error string rendered in API responses
func (c ErrorCode) Slug() string {
	switch c {
	case CodeBadRequest:
		return "bad_request"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeForbidden:
		return "forbidden"
	case CodeNotFound:
		return "not_found"
	case CodeConflict:
		return "conflict"
	case CodeBadGateway:
		return "upstream_error"
	case CodeServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

// AppError represents an application-level error with additional context
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface for comparison
func (e *AppError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	return int(e.Code)
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new AppError with the given code, message, and underlying error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a new not found error
func NotFound(resource string, err error) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), err)
}

// Unauthorized creates a new unauthorized error
func Unauthorized(message string, err error) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(CodeUnauthorized, message, err)
}

// Forbidden creates a new forbidden error
func Forbidden(message string, err error) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(CodeForbidden, message, err)
}

// BadRequest creates a new bad request error
func BadRequest(message string, err error) *AppError {
	if message == "" {
		message = "invalid request"
	}
	return NewAppError(CodeBadRequest, message, err)
}

// Conflict creates a new conflict error (for duplicate resources)
func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, err)
}

// InternalError creates a new internal server error
func InternalError(message string, err error) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalServerError, message, err)
}

// Upstream creates an error for a failed call to a remote service.
// The message carries the upstream failure text so callers can surface it.
func Upstream(message string, err error) *AppError {
	return NewAppError(CodeBadGateway, message, errors.Join(ErrUpstream, err))
}

// DatabaseError creates a new database error
func DatabaseError(operation string, err error) *AppError {
	return NewAppError(CodeInternalServerError, fmt.Sprintf("database %s failed", operation), err)
}

// StorageError creates a new storage error
func StorageError(operation string, err error) *AppError {
	return NewAppError(CodeInternalServerError, fmt.Sprintf("storage %s failed", operation), errors.Join(ErrStorageError, err))
}

// ValidationError creates a new validation error with field details
func ValidationError(field, message string) *AppError {
	return NewAppError(CodeBadRequest, message, ErrInvalidInput).WithDetails(map[string]interface{}{
		"field": field,
	})
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeForbidden
	}
	return errors.Is(err, ErrForbidden)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeConflict
	}
	return errors.Is(err, ErrUserExists)
}

// IsBadRequest checks if an error is a bad request error
func IsBadRequest(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeBadRequest
	}
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidRepositoryURL)
}

// IsUpstream checks if an error came from a remote service
func IsUpstream(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeBadGateway {
		return true
	}
	return errors.Is(err, ErrUpstream)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCode wraps an error with a specific error code
func WrapWithCode(err error, code ErrorCode, message string) *AppError {
	return NewAppError(code, message, err)
}
