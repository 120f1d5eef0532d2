package authflow

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultStateTTL bounds how long a user may take at the consent screen.
	DefaultStateTTL = 10 * time.Minute

	stateIssuer = "quickcal"
)

type pendingState struct {
	id      string
	expires time.Time
}

// StateIssuer mints and checks anti-forgery state tokens.
//
// A token is an HS256 JWT whose subject is the user and whose ID is a
// random UUID. Only the most recently issued ID per user is accepted, and
// only once.
type StateIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]pendingState
}

// NewStateIssuer creates a StateIssuer. An empty secret is replaced with 32
// random bytes, which invalidates outstanding tokens on restart.
func NewStateIssuer(secret []byte, ttl time.Duration) (*StateIssuer, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate state secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateIssuer{
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]pendingState),
	}, nil
}

// Issue mints a fresh state token for user, replacing any token still
// pending for that user.
func (s *StateIssuer) Issue(user string) (string, error) {
	now := s.now()
	id := uuid.NewString()
	expires := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		Subject:   user,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.pending[user] = pendingState{id: id, expires: expires}
	return signed, nil
}

// Consume validates token for user and, on success, retires it.
// A failed check leaves the pending token untouched so a forged callback
// cannot cancel a legitimate handshake.
func (s *StateIssuer) Consume(user, token string) error {
	if token == "" {
		return ErrMissingState
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithSubject(user),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateMismatch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[user]
	if !ok || p.id != claims.ID {
		return fmt.Errorf("%w: token superseded or already used", ErrStateMismatch)
	}
	delete(s.pending, user)
	return nil
}

// Pending reports whether user has a handshake in flight.
func (s *StateIssuer) Pending(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[user]
	return ok && s.now().Before(p.expires)
}

func (s *StateIssuer) pruneLocked(now time.Time) {
	for user, p := range s.pending {
		if !now.Before(p.expires) {
			delete(s.pending, user)
		}
	}
}
