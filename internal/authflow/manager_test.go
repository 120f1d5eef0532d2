package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/quickcal/internal/credstore"
)

// tokenServer is a fake OAuth 2.0 token endpoint.
type tokenServer struct {
	*httptest.Server
	calls        atomic.Int32
	lastRedirect atomic.Value
	fail         atomic.Bool
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		_ = r.ParseForm()
		ts.lastRedirect.Store(r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		if ts.fail.Load() || r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + r.PostForm.Get("code"),
			"token_type":    "Bearer",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"scope":         "https://www.googleapis.com/auth/calendar.events",
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestManager(t *testing.T, ts *tokenServer) (*Manager, *credstore.MemoryStore) {
	t.Helper()
	conf := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"scope-a", "scope-b"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/o/oauth2/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	store := credstore.NewMemoryStore(nil)
	m, err := NewManager(Config{
		BaseURL:  "https://cal.example.com/",
		Provider: NewOAuth2Provider(conf),
		Store:    store,
	})
	require.NoError(t, err)
	return m, store
}

func stateFrom(t *testing.T, consentURL string) string {
	t.Helper()
	u, err := url.Parse(consentURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestNewManager(t *testing.T) {
	_, err := NewManager(Config{Store: credstore.NewMemoryStore(nil)})
	assert.Error(t, err)

	_, err = NewManager(Config{Provider: NewOAuth2Provider(&oauth2.Config{})})
	assert.Error(t, err)

	m, err := NewManager(Config{Provider: NewOAuth2Provider(&oauth2.Config{}), Store: credstore.NewMemoryStore(nil)})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, m.BaseURL())
	assert.Equal(t, "http://localhost:5000/oauth2/callback/me", m.RedirectURL("me"))
}

func TestManager_Begin(t *testing.T) {
	m, store := newTestManager(t, newTokenServer(t))

	consent, err := m.Begin("alice")
	require.NoError(t, err)

	u, err := url.Parse(consent)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.example.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://cal.example.com/oauth2/callback/alice", q.Get("redirect_uri"))
	assert.Equal(t, "scope-a scope-b", q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "true", q.Get("include_granted_scopes"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.NotEmpty(t, q.Get("state"))
	assert.True(t, m.Pending("alice"))

	_, ok, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok, "Begin must not write the store")
}

func TestManager_Begin_InvalidUser(t *testing.T) {
	m, _ := newTestManager(t, newTokenServer(t))

	for _, user := range []string{"", "../etc", "a b", "alice/bob"} {
		_, err := m.Begin(user)
		assert.ErrorIs(t, err, credstore.ErrInvalidUser, user)
	}
}

func TestManager_Complete(t *testing.T) {
	ts := newTokenServer(t)
	m, store := newTestManager(t, ts)
	ctx := context.Background()

	consent, err := m.Begin("alice")
	require.NoError(t, err)

	grant, err := m.Complete(ctx, "alice", url.Values{
		"state": {stateFrom(t, consent)},
		"code":  {"good-code"},
	})
	require.NoError(t, err)
	assert.Equal(t, "access-good-code", grant.AccessToken)
	assert.Equal(t, "refresh-1", grant.RefreshToken)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar.events"}, grant.Scopes)
	assert.WithinDuration(t, time.Now().Add(time.Hour), grant.Expiry, time.Minute)
	assert.Equal(t, "https://cal.example.com/oauth2/callback/alice", ts.lastRedirect.Load())

	stored, ok, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, grant.AccessToken, stored.AccessToken)
	assert.False(t, m.Pending("alice"))
}

func TestManager_Complete_Failures(t *testing.T) {
	ctx := context.Background()
	previous := &credstore.Grant{AccessToken: "old", RefreshToken: "old-refresh"}

	tests := []struct {
		name      string
		query     func(state string) url.Values
		wantErr   error
		exchanged bool
	}{
		{
			name:    "missing state",
			query:   func(string) url.Values { return url.Values{"code": {"good-code"}} },
			wantErr: ErrMissingState,
		},
		{
			name: "forged state",
			query: func(string) url.Values {
				return url.Values{"state": {"forged"}, "code": {"good-code"}}
			},
			wantErr: ErrStateMismatch,
		},
		{
			name: "consent denied",
			query: func(state string) url.Values {
				return url.Values{"state": {state}, "error": {"access_denied"}}
			},
			wantErr: ErrConsentDenied,
		},
		{
			name: "provider error",
			query: func(state string) url.Values {
				return url.Values{"state": {state}, "error": {"server_error"}, "error_description": {"try later"}}
			},
			wantErr: ErrExchange,
		},
		{
			name:    "missing code",
			query:   func(state string) url.Values { return url.Values{"state": {state}} },
			wantErr: ErrExchange,
		},
		{
			name: "rejected code",
			query: func(state string) url.Values {
				return url.Values{"state": {state}, "code": {"bad-code"}}
			},
			wantErr:   ErrExchange,
			exchanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTokenServer(t)
			m, store := newTestManager(t, ts)
			require.NoError(t, store.Save(ctx, "alice", previous))

			consent, err := m.Begin("alice")
			require.NoError(t, err)

			_, err = m.Complete(ctx, "alice", tt.query(stateFrom(t, consent)))
			require.ErrorIs(t, err, tt.wantErr)

			stored, ok, err := store.Load(ctx, "alice")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "old", stored.AccessToken, "failed callback must not touch the store")
			assert.Equal(t, tt.exchanged, ts.calls.Load() > 0)
		})
	}
}

func TestManager_SecondBeginInvalidatesFirst(t *testing.T) {
	m, _ := newTestManager(t, newTokenServer(t))
	ctx := context.Background()

	first, err := m.Begin("alice")
	require.NoError(t, err)
	second, err := m.Begin("alice")
	require.NoError(t, err)

	_, err = m.Complete(ctx, "alice", url.Values{"state": {stateFrom(t, first)}, "code": {"good-code"}})
	assert.ErrorIs(t, err, ErrStateMismatch)

	_, err = m.Complete(ctx, "alice", url.Values{"state": {stateFrom(t, second)}, "code": {"good-code"}})
	assert.NoError(t, err)
}

func TestManager_InterleavedUsers(t *testing.T) {
	m, store := newTestManager(t, newTokenServer(t))
	ctx := context.Background()

	aliceURL, err := m.Begin("alice")
	require.NoError(t, err)
	bobURL, err := m.Begin("bob")
	require.NoError(t, err)

	// bob's state replayed on alice's callback is rejected
	_, err = m.Complete(ctx, "alice", url.Values{"state": {stateFrom(t, bobURL)}, "code": {"good-code"}})
	assert.ErrorIs(t, err, ErrStateMismatch)

	_, err = m.Complete(ctx, "bob", url.Values{"state": {stateFrom(t, bobURL)}, "code": {"good-code"}})
	require.NoError(t, err)
	_, err = m.Complete(ctx, "alice", url.Values{"state": {stateFrom(t, aliceURL)}, "code": {"good-code"}})
	require.NoError(t, err)

	for _, u := range []string{"alice", "bob"} {
		_, ok, err := store.Load(ctx, u)
		require.NoError(t, err)
		assert.True(t, ok, u)
	}
}

func TestGrantedScopes(t *testing.T) {
	requested := []string{"a", "b"}

	tok := &oauth2.Token{AccessToken: "x"}
	assert.Equal(t, requested, grantedScopes(tok, requested))

	tok = tok.WithExtra(map[string]any{"scope": "c d"})
	assert.Equal(t, []string{"c", "d"}, grantedScopes(tok, requested))
}

func TestAuthPath(t *testing.T) {
	assert.Equal(t, "/auth/alice", AuthPath("alice"))
}
