package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/google"
)

const testClientConfig = `{"web":{"client_id":"client-id.apps.googleusercontent.com","client_secret":"secret",` +
	`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",` +
	`"redirect_uris":["http://localhost:5000/oauth2/callback"]}}`

func testOptions(t *testing.T) *appOptions {
	t.Helper()
	t.Setenv(google.EnvClientConfigJSON, testClientConfig)

	dir := t.TempDir()
	attendees := filepath.Join(dir, "attendees.yaml")
	require.NoError(t, os.WriteFile(attendees, []byte("Bob: bob@example.com\n"), 0o600))

	return &appOptions{
		baseURL:          "https://cal.example.com/",
		clientSecretFile: filepath.Join(dir, "missing.json"),
		storeType:        credstore.BackendMemory,
		attendeesFile:    attendees,
		timeZone:         "Asia/Seoul",
		openAIModel:      "gpt-4o-mini",
	}
}

func TestNewApp(t *testing.T) {
	opts := testOptions(t)

	a, err := newApp(context.Background(), opts, appDeps{withAuth: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.auth)
	assert.Equal(t, "https://cal.example.com", a.auth.BaseURL())
	assert.Equal(t, "https://cal.example.com/oauth2/callback/alice", a.auth.RedirectURL("alice"))
	assert.Equal(t, "client-id.apps.googleusercontent.com", a.oauthConfig.ClientID)
	assert.Equal(t, 1, a.directory.Len())
	assert.False(t, a.scheduler.CanExtract())
}

func TestNewApp_WithoutAuth(t *testing.T) {
	opts := testOptions(t)

	a, err := newApp(context.Background(), opts, appDeps{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.auth)
	assert.NotNil(t, a.dispatcher)
}

func TestNewApp_Extraction(t *testing.T) {
	opts := testOptions(t)
	opts.openAIBaseURL = "http://127.0.0.1:8080/v1"

	a, err := newApp(context.Background(), opts, appDeps{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.True(t, a.scheduler.CanExtract())
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(t *testing.T, o *appOptions)
	}{
		{name: "unknown store", modify: func(t *testing.T, o *appOptions) { o.storeType = "sqlite" }},
		{name: "bad encryption key", modify: func(t *testing.T, o *appOptions) { o.encryptionKey = "not-base64!" }},
		{name: "bad time zone", modify: func(t *testing.T, o *appOptions) { o.timeZone = "Mars/Olympus" }},
		{name: "no client config", modify: func(t *testing.T, o *appOptions) { t.Setenv(google.EnvClientConfigJSON, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.modify(t, opts)

			_, err := newApp(context.Background(), opts, appDeps{})
			assert.Error(t, err)
		})
	}
}

func TestNormalizedBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", (&appOptions{}).normalizedBaseURL())
	assert.Equal(t, "https://cal.example.com", (&appOptions{baseURL: " https://cal.example.com// "}).normalizedBaseURL())
}
