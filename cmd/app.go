package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/quickcal/internal/attendee"
	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/google"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
	"github.com/teemow/quickcal/internal/nlp"
	"github.com/teemow/quickcal/internal/scheduler"
)

// DefaultAttendeesFile is the attendee directory read when none is configured.
const DefaultAttendeesFile = "attendees.yaml"

// appOptions holds the flags shared by every command that talks to Google Calendar.
type appOptions struct {
	baseURL          string
	clientSecretFile string

	storeType     string
	tokenDir      string
	valkey        credstore.ValkeyConfig
	encryptionKey string
	stateSecret   string

	attendeesFile string
	timeZone      string

	openAIKey     string
	openAIBaseURL string
	openAIModel   string
	jsonMode      bool
}

func (o *appOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.baseURL, "base-url", authflow.DefaultBaseURL, "Externally reachable address of the HTTP server, used for OAuth callbacks (env: BASE_URL)")
	f.StringVar(&o.clientSecretFile, "client-secret-file", google.DefaultClientSecretFile, "Google OAuth client configuration file, ignored when GOOGLE_CLIENT_CONFIG_JSON is set (env: GOOGLE_CLIENT_SECRET_FILE)")

	f.StringVar(&o.storeType, "store", credstore.BackendFile, "Credential store backend: file, memory or valkey (env: CREDENTIAL_STORE)")
	f.StringVar(&o.tokenDir, "token-dir", credstore.DefaultDir, "Directory for the file credential store (env: TOKEN_DIR)")
	f.StringVar(&o.valkey.Addr, "valkey-url", "", "Valkey server address for the valkey store (env: VALKEY_URL)")
	f.StringVar(&o.valkey.Password, "valkey-password", "", "Valkey password (env: VALKEY_PASSWORD)")
	f.BoolVar(&o.valkey.TLSEnabled, "valkey-tls", false, "Enable TLS for Valkey connections (env: VALKEY_TLS_ENABLED)")
	f.StringVar(&o.valkey.KeyPrefix, "valkey-key-prefix", credstore.DefaultKeyPrefix, "Prefix for Valkey keys (env: VALKEY_KEY_PREFIX)")
	f.IntVar(&o.valkey.DB, "valkey-db", 0, "Valkey database number (env: VALKEY_DB)")
	f.StringVar(&o.encryptionKey, "encryption-key", "", "Base64 encoded 32-byte key sealing stored grants with AES-256-GCM (env: CREDENTIAL_ENCRYPTION_KEY)")

	f.StringVar(&o.attendeesFile, "attendees", DefaultAttendeesFile, "YAML file mapping attendee names to addresses (env: ATTENDEES_FILE)")
	f.StringVar(&o.timeZone, "timezone", nlp.DefaultTimeZone, "IANA time zone for reference dates and created events (env: QUICKCAL_TIMEZONE)")

	f.StringVar(&o.openAIKey, "openai-api-key", "", "API key for sentence extraction (env: OPENAI_API_KEY)")
	f.StringVar(&o.openAIBaseURL, "openai-base-url", "", "OpenAI-compatible API root, e.g. a local model server (env: OPENAI_BASE_URL)")
	f.StringVar(&o.openAIModel, "openai-model", nlp.DefaultModel, "Model used for sentence extraction (env: OPENAI_MODEL)")
	f.BoolVar(&o.jsonMode, "json-mode", true, "Ask the model for a JSON object response (env: OPENAI_JSON_MODE)")
}

// addStateFlags registers flags only the authorization handshake needs.
func (o *appOptions) addStateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.stateSecret, "state-secret", "", "Secret signing OAuth state tokens; random per process when empty (env: STATE_SECRET)")
}

// loadEnv applies environment variables to flags that were not set explicitly.
func (o *appOptions) loadEnv(cmd *cobra.Command) {
	envOverride(cmd, "base-url", "BASE_URL", &o.baseURL)
	envOverride(cmd, "client-secret-file", "GOOGLE_CLIENT_SECRET_FILE", &o.clientSecretFile)

	envOverride(cmd, "store", "CREDENTIAL_STORE", &o.storeType)
	envOverride(cmd, "token-dir", "TOKEN_DIR", &o.tokenDir)
	envOverride(cmd, "valkey-url", "VALKEY_URL", &o.valkey.Addr)
	envOverride(cmd, "valkey-password", "VALKEY_PASSWORD", &o.valkey.Password)
	envOverrideBool(cmd, "valkey-tls", "VALKEY_TLS_ENABLED", &o.valkey.TLSEnabled)
	envOverride(cmd, "valkey-key-prefix", "VALKEY_KEY_PREFIX", &o.valkey.KeyPrefix)
	envOverrideInt(cmd, "valkey-db", "VALKEY_DB", &o.valkey.DB)
	envOverride(cmd, "encryption-key", "CREDENTIAL_ENCRYPTION_KEY", &o.encryptionKey)
	if cmd.Flags().Lookup("state-secret") != nil {
		envOverride(cmd, "state-secret", "STATE_SECRET", &o.stateSecret)
	}

	envOverride(cmd, "attendees", "ATTENDEES_FILE", &o.attendeesFile)
	envOverride(cmd, "timezone", "QUICKCAL_TIMEZONE", &o.timeZone)

	envOverride(cmd, "openai-api-key", "OPENAI_API_KEY", &o.openAIKey)
	envOverride(cmd, "openai-base-url", "OPENAI_BASE_URL", &o.openAIBaseURL)
	envOverride(cmd, "openai-model", "OPENAI_MODEL", &o.openAIModel)
	envOverrideBool(cmd, "json-mode", "OPENAI_JSON_MODE", &o.jsonMode)
}

// normalizedBaseURL returns the base URL without a trailing slash.
func (o *appOptions) normalizedBaseURL() string {
	if u := strings.TrimRight(strings.TrimSpace(o.baseURL), "/"); u != "" {
		return u
	}
	return authflow.DefaultBaseURL
}

// appDeps carries the ambient dependencies of the wired components.
type appDeps struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	// withAuth builds the authorization manager.
	withAuth bool
}

// app is the wired scheduling stack.
type app struct {
	store       credstore.Store
	closer      io.Closer
	oauthConfig *oauth2.Config
	auth        *authflow.Manager
	dispatcher  *event.Dispatcher
	directory   *attendee.Directory
	scheduler   *scheduler.Service
}

// newApp wires the credential store, the Google client configuration, the
// dispatcher, the extractor and the attendee directory.
func newApp(_ context.Context, o *appOptions, deps appDeps) (*app, error) {
	logger := deps.logger
	if logger == nil {
		logger = slog.Default()
	}

	var key []byte
	if o.encryptionKey != "" {
		var err error
		key, err = credstore.KeyFromBase64(o.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
	} else if o.storeType == credstore.BackendValkey {
		logger.Warn("grants are stored unencrypted in Valkey; set --encryption-key to seal them")
	}

	store, closer, err := credstore.New(credstore.Config{
		Type:          o.storeType,
		Dir:           o.tokenDir,
		Valkey:        o.valkey,
		EncryptionKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}
	a := &app{store: store, closer: closer}

	conf, source, err := google.LoadClientConfig(google.ClientConfigSourceFromEnv(o.clientSecretFile))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.oauthConfig = conf
	logger.Info("loaded Google client configuration", slog.String("source", source), slog.String("store", o.storeType))

	baseURL := o.normalizedBaseURL()

	if deps.withAuth {
		var states *authflow.StateIssuer
		if o.stateSecret != "" {
			states, err = authflow.NewStateIssuer([]byte(o.stateSecret), authflow.DefaultStateTTL)
			if err != nil {
				_ = a.Close()
				return nil, err
			}
		}
		a.auth, err = authflow.NewManager(authflow.Config{
			BaseURL:  baseURL,
			Provider: authflow.NewOAuth2Provider(conf),
			Store:    store,
			States:   states,
			Logger:   logger,
			Metrics:  deps.metrics,
			Audit:    deps.audit,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create authorization manager: %w", err)
		}
	}

	a.dispatcher, err = event.NewDispatcher(event.Config{
		Store:     store,
		Calendars: event.GoogleCalendars(conf),
		AuthPath: func(user string) string {
			return baseURL + authflow.AuthPath(user)
		},
		TimeZone: o.timeZone,
		Logger:   logger,
		Metrics:  deps.metrics,
		Audit:    deps.audit,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	if o.attendeesFile != "" {
		a.directory, err = attendee.LoadFile(o.attendeesFile)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		logger.Info("loaded attendee directory", slog.String("path", o.attendeesFile), slog.Int("entries", a.directory.Len()))
	}

	extractor, err := newExtractor(o, logger, deps.metrics)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	cfg := scheduler.Config{
		Dispatcher: a.dispatcher,
		Directory:  a.directory,
		Logger:     logger,
	}
	if extractor != nil {
		cfg.Extractor = extractor
	}
	a.scheduler, err = scheduler.New(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// newExtractor builds the sentence extractor, or returns nil when no
// language model is configured.
func newExtractor(o *appOptions, logger *slog.Logger, metrics *instrumentation.Metrics) (*nlp.Extractor, error) {
	if o.openAIKey == "" && o.openAIBaseURL == "" {
		logger.Warn("sentence extraction disabled: OPENAI_API_KEY is not set")
		return nil, nil
	}

	loc, err := time.LoadLocation(o.timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", o.timeZone, err)
	}

	completer, err := nlp.NewOpenAICompleter(nlp.OpenAIConfig{
		APIKey:  o.openAIKey,
		BaseURL: o.openAIBaseURL,
		Model:   o.openAIModel,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("sentence extraction enabled",
		slog.String("model", completer.Model()),
		slog.Bool("json_mode", o.jsonMode),
		logging.Operation("extract"),
	)

	return nlp.NewExtractor(nlp.Config{
		Completer: completer,
		JSONMode:  o.jsonMode,
		Location:  loc,
		Logger:    logger,
		Metrics:   metrics,
	})
}

// Close releases the credential store.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
