// Package errors defines the domain error taxonomy shared by services and HTTP handlers.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates user-correctable input (bad amount, missing payout link,
// insufficient balance). Mapped to 400 by the API layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a missing wallet, withdrawal or itinerary. Mapped to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// GatewayError indicates the payout provider or media host rejected a call or was
// unreachable. Callers never see the underlying transport error directly.
type GatewayError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error [%d]: %s (code: %s)", e.Provider, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("%s error [%d]: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// InternalError indicates an unexpected condition, e.g. a malformed provider response.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// NewInternalError creates an InternalError wrapping err
func NewInternalError(msg string, err error) error {
	return &InternalError{Message: msg, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsGateway reports whether err is a GatewayError
func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// AsGateway extracts a GatewayError from err if present
func AsGateway(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
