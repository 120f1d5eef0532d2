package google

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// EnvClientConfigJSON holds the inline client configuration.
	EnvClientConfigJSON = "GOOGLE_CLIENT_CONFIG_JSON"

	// DefaultClientSecretFile is read when no inline configuration is set.
	DefaultClientSecretFile = "client_secret.json"
)

// Source names where a client configuration came from.
const (
	SourceInline = "inline"
	SourceFile   = "file"
)

// ClientConfigSource describes the candidate configuration sources.
// InlineJSON wins whenever it is non-empty; File is not read in that case.
type ClientConfigSource struct {
	InlineJSON string
	File       string
}

// ClientConfigSourceFromEnv reads the inline configuration from the environment
// and falls back to file (or DefaultClientSecretFile when empty).
func ClientConfigSourceFromEnv(file string) ClientConfigSource {
	if file == "" {
		file = DefaultClientSecretFile
	}
	return ClientConfigSource{
		InlineJSON: os.Getenv(EnvClientConfigJSON),
		File:       file,
	}
}

// LoadClientConfig parses the client configuration into an OAuth2 config
// requesting CalendarScopes. The returned string names the source used.
// RedirectURL is left for the caller to set per handshake.
func LoadClientConfig(src ClientConfigSource) (*oauth2.Config, string, error) {
	var (
		data   []byte
		source string
	)

	if strings.TrimSpace(src.InlineJSON) != "" {
		data = []byte(src.InlineJSON)
		source = SourceInline
	} else {
		file := src.File
		if file == "" {
			file = DefaultClientSecretFile
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("%s not found. Please provide %s or place the client secret file at that path", file, EnvClientConfigJSON)
			}
			return nil, "", fmt.Errorf("unable to read client secret file: %w", err)
		}
		data = b
		source = SourceFile
	}

	conf, err := google.ConfigFromJSON(data, CalendarScopes...)
	if err != nil {
		return nil, "", fmt.Errorf("unable to parse %s client configuration: %w", source, err)
	}
	if conf.ClientID == "" {
		return nil, "", fmt.Errorf("%s client configuration has no client_id", source)
	}
	return conf, source, nil
}
