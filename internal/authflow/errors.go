package authflow

import "errors"

var (
	// ErrMissingState is returned when the callback carries no state parameter.
	ErrMissingState = errors.New("authorization state missing from callback")

	// ErrStateMismatch is returned when the callback state is forged, expired,
	// issued for another user, or superseded by a newer Begin.
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrConsentDenied is returned when the user declined consent at the provider.
	ErrConsentDenied = errors.New("authorization consent denied")

	// ErrExchange is returned when the provider rejects the authorization code
	// or the callback carries no code.
	ErrExchange = errors.New("authorization code exchange failed")
)
