package event

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized is returned when the user has no usable grant.
	ErrNotAuthorized = errors.New("user has not authorized calendar access")

	// ErrIncompleteDraft is returned when a draft lacks a start or end time.
	ErrIncompleteDraft = errors.New("event draft is missing a start or end time")

	// ErrInvalidDraft is returned when draft times cannot be parsed or end
	// is not after start.
	ErrInvalidDraft = errors.New("event draft is invalid")

	// ErrProvider is returned when the calendar provider rejects a request.
	ErrProvider = errors.New("calendar provider error")
)

// NotAuthorizedError names the step a user must take to authorize.
type NotAuthorizedError struct {
	User string
	// AuthPath is the path that starts the authorization handshake.
	AuthPath string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %q has not authorized calendar access; visit %s", e.User, e.AuthPath)
}

// Is makes errors.Is(err, ErrNotAuthorized) match.
func (e *NotAuthorizedError) Is(target error) bool {
	return target == ErrNotAuthorized
}

// ProviderError carries the calendar provider's failure message.
type ProviderError struct {
	User       string
	Operation  string
	Message    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar %s for %q failed: %s", e.Operation, e.User, e.Message)
}

// Is makes errors.Is(err, ErrProvider) match.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
