// Package authflow runs the OAuth 2.0 authorization-code handshake for
// named users.
//
// Begin builds the provider consent URL for a user and issues a signed,
// single-use state token bound to that user. Complete checks the state on
// the provider callback, exchanges the authorization code and persists the
// resulting grant through a credstore.Store.
//
// Each user has at most one handshake in flight. A second Begin for the
// same user invalidates the first state token; handshakes for different
// users never interfere.
package authflow
