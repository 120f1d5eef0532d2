package credstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidUser is returned for identifiers that cannot key a record.
var ErrInvalidUser = errors.New("invalid user identifier")

// Store persists grants keyed by user identifier.
type Store interface {
	// Save replaces the grant stored for user.
	Save(ctx context.Context, user string, grant *Grant) error

	// Load returns the most recently saved grant for user.
	// ok is false when nothing was ever saved for user.
	Load(ctx context.Context, user string) (grant *Grant, ok bool, err error)
}

var userPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]{1,64}$`)

// ValidateUser checks that user is a usable record key: 1-64 letters, digits,
// underscores or hyphens. It keeps identifiers safe to embed in file names,
// storage keys and callback paths.
func ValidateUser(user string) error {
	if !userPattern.MatchString(user) {
		return fmt.Errorf("%w: %q (use letters, digits, '_' or '-', at most 64 characters)", ErrInvalidUser, user)
	}
	return nil
}
