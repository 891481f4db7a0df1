package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound record not found
	ErrNotFound = errors.New("record not found")

	// ErrNoSession no tokens stored for the current browser session
	ErrNoSession = errors.New("no active session")

	// ErrResendCooldown verification code was requested again too soon
	ErrResendCooldown = errors.New("verification code resend is on cooldown")

	// ErrUnauthenticated the backend rejected the credential
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConflict duplicate record
	ErrConflict = errors.New("duplicate record")
)

// AuthError covers bad credentials, expired or invalid sessions and missing
// tokens. A failed token refresh always surfaces as an AuthError and means
// the session has ended.
type AuthError struct {
	Message     string
	OriginalErr error
}

func (e *AuthError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("auth error: %s: %v", e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.OriginalErr
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// NewAuthError creates a new AuthError.
func NewAuthError(message string, err error) *AuthError {
	return &AuthError{Message: message, OriginalErr: err}
}

// ValidationError is returned when the backend rejects input, e.g. a wrong
// or expired verification code.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %s (%d fields)", e.Message, len(e.Fields))
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ConflictError is returned on duplicate registration.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// CheckoutError is returned when checkout session creation fails, in
// particular when the backend returns no session URL.
type CheckoutError struct {
	Message     string
	OriginalErr error
}

func (e *CheckoutError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("checkout error: %s: %v", e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("checkout error: %s", e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.OriginalErr
}

// NewCheckoutError creates a new CheckoutError.
func NewCheckoutError(message string, err error) *CheckoutError {
	return &CheckoutError{Message: message, OriginalErr: err}
}

// SubscriptionError is returned when the backend rejects a subscription
// operation such as cancellation.
type SubscriptionError struct {
	Message        string
	SubscriptionID string
	StatusCode     int
	OriginalErr    error
}

func (e *SubscriptionError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("subscription error: %s: %v (subscription_id: %s)", e.Message, e.OriginalErr, e.SubscriptionID)
	}
	return fmt.Sprintf("subscription error: %s (subscription_id: %s)", e.Message, e.SubscriptionID)
}

func (e *SubscriptionError) Unwrap() error {
	return e.OriginalErr
}

// NewSubscriptionError creates a new SubscriptionError.
func NewSubscriptionError(message, subscriptionID string, statusCode int, err error) *SubscriptionError {
	return &SubscriptionError{
		Message:        message,
		SubscriptionID: subscriptionID,
		StatusCode:     statusCode,
		OriginalErr:    err,
	}
}

// NetworkError is a transport failure: the request never produced a
// response.
type NetworkError struct {
	Op          string
	OriginalErr error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.OriginalErr)
}

func (e *NetworkError) Unwrap() error {
	return e.OriginalErr
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, OriginalErr: err}
}
