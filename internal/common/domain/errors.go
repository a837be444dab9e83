package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an AppError for callers and HTTP mapping.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeResolution             ErrorCode = "RESOLUTION_ERROR"
	CodeNetwork                ErrorCode = "NETWORK_ERROR"
	CodeGeolocationUnavailable ErrorCode = "GEOLOCATION_UNAVAILABLE"
	CodeGeolocationDenied      ErrorCode = "GEOLOCATION_DENIED"
	CodeGeolocationTimeout     ErrorCode = "GEOLOCATION_TIMEOUT"
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeForbidden              ErrorCode = "FORBIDDEN"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeInvalidState           ErrorCode = "INVALID_STATE"
)

// User-facing geolocation messages. Each failure mode has its own wording.
const (
	MsgGeolocationUnavailable = "Location services are not available on this device. Please search for your address instead."
	MsgGeolocationDenied      = "Location permission was denied. Allow location access or pick the spot on the map."
	MsgGeolocationTimeout     = "Getting your location took too long. Please try again."
)

// AppError is the single error type returned across the service boundary.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewValidationError reports input that was rejected locally, before any network call.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewResolutionError reports a place or coordinate that could not be turned into a Location.
func NewResolutionError(message string, err error) *AppError {
	return &AppError{Code: CodeResolution, Message: message, Err: err}
}

// NewNetworkError reports a failed call to the booking backend.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{Code: CodeNetwork, Message: message, Err: err}
}

// NewGeolocationUnavailableError is returned when the device has no location capability.
func NewGeolocationUnavailableError() *AppError {
	return &AppError{Code: CodeGeolocationUnavailable, Message: MsgGeolocationUnavailable}
}

// NewGeolocationDeniedError is returned when the rider refused location permission.
func NewGeolocationDeniedError() *AppError {
	return &AppError{Code: CodeGeolocationDenied, Message: MsgGeolocationDenied}
}

// NewGeolocationTimeoutError is returned when the position did not arrive in time.
func NewGeolocationTimeoutError() *AppError {
	return &AppError{Code: CodeGeolocationTimeout, Message: MsgGeolocationTimeout}
}

// NewAuthenticationRequiredError is returned when an action needs a signed-in rider.
func NewAuthenticationRequiredError(message string) *AppError {
	return &AppError{Code: CodeAuthenticationRequired, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
