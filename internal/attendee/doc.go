// Package attendee turns free-form attendee identifiers into addresses.
//
// Identifiers containing '@' are used verbatim. Anything else is looked up
// case-insensitively in a name directory loaded from YAML:
//
//	alice: alice@example.com
//	Bob: bob@example.org
//
// Names missing from the directory pass through unchanged and are left for
// the calendar provider to accept or reject.
package attendee
