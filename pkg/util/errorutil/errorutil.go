package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// Error codes rendered to clients.
const (
	CodeValidation            = "VALIDATION_FAILED"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeSelfDemotion          = "SELF_DEMOTION_FORBIDDEN"
	CodeSelfDeletion          = "SELF_DELETION_FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeDuplicateEmail        = "DUPLICATE_EMAIL"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeUpstreamFailure       = "UPSTREAM_FAILURE"
	CodeWeatherNotConfigured  = "WEATHER_NOT_CONFIGURED"
	CodeInternal              = "INTERNAL_ERROR"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewSelfDemotionForbidden is returned when an admin tries to drop their own Admin role.
func NewSelfDemotionForbidden() error {
	return NewDomainError(CodeSelfDemotion, "You cannot demote yourself from Admin role", http.StatusForbidden, nil)
}

// NewSelfDeletionForbidden is returned when an admin tries to delete their own account.
func NewSelfDeletionForbidden() error {
	return NewDomainError(CodeSelfDeletion, "You cannot delete your own account", http.StatusForbidden, nil)
}

func NewDuplicateEmail(email string) error {
	return NewDomainError(CodeDuplicateEmail, "email already registered", http.StatusConflict, map[string]any{"email": email})
}

func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot move issue from %s to %s", from, to),
		http.StatusConflict,
		map[string]any{"from": from, "to": to})
}

// NewUpstreamFailure wraps a third-party failure; providerMessage is passed through when known.
func NewUpstreamFailure(message, providerMessage string, err error) error {
	var details map[string]any
	if providerMessage != "" {
		details = map[string]any{"upstream": providerMessage}
	}
	return &DomainError{
		Code:       CodeUpstreamFailure,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func fromFiberError(err *fiber.Error) *DomainError {
	code := CodeInternal
	switch err.Code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = CodeValidation
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		code = CodeConflict
	case http.StatusRequestEntityTooLarge:
		code = "PAYLOAD_TOO_LARGE"
	}
	message := err.Message
	if err.Code >= http.StatusInternalServerError {
		message = "internal server error"
	}
	return &DomainError{Code: code, Message: message, HTTPStatus: err.Code}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
