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

	// ErrUnauthorized indicates the request lacks a valid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user doesn't hold the required permission
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionExpired indicates the session token has expired
	ErrSessionExpired = errors.New("session expired")

	// ErrBranchNotFound indicates the branch was not found locally or on the remote
	ErrBranchNotFound = errors.New("branch not found")

	// ErrProtectedBranch indicates a write to a protected branch without ManageBranches
	ErrProtectedBranch = errors.New("branch is protected")

	// ErrNonFastForward indicates the local branch diverged from the remote
	ErrNonFastForward = errors.New("non-fast-forward: local branch diverged from remote")

	// ErrAdminGroupImmutable indicates an attempt to delete or strip the Admin group
	ErrAdminGroupImmutable = errors.New("the Admin group cannot be modified")

	// ErrGitOperationFailed indicates a git operation failed
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrUpstreamAPI indicates a GitHub API call or token exchange failed
	ErrUpstreamAPI = errors.New("upstream api error")

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
)

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

// Conflict creates a new conflict error
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

// DatabaseError creates a new database error
func DatabaseError(operation string, err error) *AppError {
	return NewAppError(CodeInternalServerError, fmt.Sprintf("database %s failed", operation), err)
}

// GitError creates a new git operation error
func GitError(operation string, err error) *AppError {
	return NewAppError(CodeInternalServerError, fmt.Sprintf("git %s failed", operation), err)
}

// UpstreamError creates a new upstream API error (token exchange, GitHub REST)
func UpstreamError(operation string, err error) *AppError {
	return NewAppError(CodeBadGateway, fmt.Sprintf("github %s failed", operation), err)
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
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeForbidden
	}
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrProtectedBranch)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeConflict
	}
	return errors.Is(err, ErrNonFastForward)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
