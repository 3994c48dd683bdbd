// Package apperror defines the application's error taxonomy and how each kind of
// error maps onto an HTTP status and a JSON error body.
// Services return *AppError values; handlers never pick status codes themselves.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType enumerates the categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents a failure in the backing store.
	DatabaseError
	// ConfigError represents a problem with application configuration.
	ConfigError
	// AuthError represents a failed authentication (missing token, bad credentials).
	AuthError
	// TokenExpiredError is an AuthError whose token was well-formed but expired.
	TokenExpiredError
	// InvalidTokenError is an AuthError whose token could not be verified.
	InvalidTokenError
	// NotFoundError represents a missing resource, or one the caller does not own.
	NotFoundError
	// ValidationError represents a request payload that failed shape validation.
	ValidationError
	// BadRequestError represents a generic malformed request.
	BadRequestError
	// InternalError represents a generic internal server error.
	InternalError
	// MigrationError represents a failure while applying schema migrations.
	MigrationError
	// ConflictError represents a uniqueness conflict, e.g. a taken username.
	ConflictError
	// MethodNotAllowedError is used for known routes hit with the wrong verb.
	MethodNotAllowedError
	// RateLimitedError is returned when a client exceeds its request budget.
	RateLimitedError
)

// Machine-readable codes carried next to the message for token failures, so
// clients can tell "refresh and retry" apart from "log in again".
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
)

// AppError is the application's error type. Message is safe to show to API
// clients; Err keeps the underlying cause for logs and development responses.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Err     error
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError, TokenExpiredError, InvalidTokenError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case MethodNotAllowedError:
		return http.StatusMethodNotAllowed
	case RateLimitedError:
		return http.StatusTooManyRequests
	default:
		// DatabaseError, ConfigError, InternalError, MigrationError and UnknownError
		// are all server-side failures.
		return http.StatusInternalServerError
	}
}

// IsServerError reports whether the error maps to a 5xx status.
func (e *AppError) IsServerError() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// NewAppError creates a new AppError of the given type.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError.
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewTokenExpiredError creates a new TokenExpiredError carrying CodeTokenExpired.
func NewTokenExpiredError(message string, underlyingError error) *AppError {
	e := NewAppError(TokenExpiredError, message, underlyingError)
	e.Code = CodeTokenExpired
	return e
}

// NewInvalidTokenError creates a new InvalidTokenError carrying CodeInvalidToken.
func NewInvalidTokenError(message string, underlyingError error) *AppError {
	e := NewAppError(InvalidTokenError, message, underlyingError)
	e.Code = CodeInvalidToken
	return e
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError.
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError.
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// NewMethodNotAllowedError creates a new MethodNotAllowedError.
func NewMethodNotAllowedError(message string) *AppError {
	return NewAppError(MethodNotAllowedError, message, nil)
}

// NewRateLimitedError creates a new RateLimitedError.
func NewRateLimitedError(message string) *AppError {
	return NewAppError(RateLimitedError, message, nil)
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"Emoji combo not found"`
	// Code is set for token failures only.
	Code string `json:"code,omitempty" example:"TOKEN_EXPIRED"`
	// Message carries the underlying cause and is only populated in development mode.
	Message string `json:"message,omitempty"`
}

// ToResponse converts an AppError to the body sent to clients. Server errors
// are reduced to a generic message; verbose adds the underlying cause.
func (e *AppError) ToResponse(verbose bool) ErrorResponse {
	resp := ErrorResponse{Error: e.Message, Code: e.Code}
	if e.IsServerError() {
		resp.Error = "Something went wrong!"
		if verbose {
			resp.Message = e.Error()
		}
	}
	return resp
}

// FromError returns err as an *AppError when it is one, looking through wrapping.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isType(err, NotFoundError) }

// IsAuthError checks if an error is any of the 401 kinds.
func IsAuthError(err error) bool {
	return isType(err, AuthError) || isType(err, TokenExpiredError) || isType(err, InvalidTokenError)
}

// IsTokenExpired checks if an error is a TokenExpired error.
func IsTokenExpired(err error) bool { return isType(err, TokenExpiredError) }

// IsValidationError checks if an error is a Validation error.
func IsValidationError(err error) bool { return isType(err, ValidationError) }

// IsConflictError checks if an error is a Conflict error.
func IsConflictError(err error) bool { return isType(err, ConflictError) }
