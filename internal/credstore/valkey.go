package credstore

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// DefaultKeyPrefix is prepended to every Valkey key written by ValkeyStore.
const DefaultKeyPrefix = "quickcal:"

// ValkeyConfig holds connection settings for ValkeyStore.
type ValkeyConfig struct {
	// Addr is the server address (e.g., "valkey.namespace.svc:6379").
	Addr string

	// Password is the optional password for authentication.
	Password string

	// TLSEnabled enables TLS for the connection.
	TLSEnabled bool

	// KeyPrefix is the prefix for all keys (default: "quickcal:").
	KeyPrefix string

	// DB is the database number (default: 0).
	DB int
}

// ValkeyStore keeps one string key per user. SET replaces the value in a
// single command, so readers never observe a partial record.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	sealer *Sealer
}

// NewValkeyStore connects to Valkey. sealer may be nil.
func NewValkeyStore(cfg ValkeyConfig, sealer *Sealer) (*ValkeyStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("valkey address is required")
	}

	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &ValkeyStore{client: client, prefix: prefix, sealer: sealer}, nil
}

func (s *ValkeyStore) key(user string) string {
	return grantKey(s.prefix, user)
}

func grantKey(prefix, user string) string {
	return prefix + "grant:" + user
}

// Save implements Store.
func (s *ValkeyStore) Save(ctx context.Context, user string, grant *Grant) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	data, err := encodeRecord(s.sealer, grant)
	if err != nil {
		return err
	}

	cmd := s.client.B().Set().Key(s.key(user)).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store grant in valkey: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *ValkeyStore) Load(ctx context.Context, user string) (*Grant, bool, error) {
	if err := ValidateUser(user); err != nil {
		return nil, false, err
	}

	cmd := s.client.B().Get().Key(s.key(user)).Build()
	raw, err := s.client.Do(ctx, cmd).ToString()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read grant from valkey: %w", err)
	}

	grant, err := decodeRecord(s.sealer, []byte(raw))
	if err != nil {
		return nil, false, fmt.Errorf("valkey record for %s: %w", user, err)
	}
	return grant, true, nil
}

// Ping checks connectivity; used by readiness probes.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the underlying connections.
func (s *ValkeyStore) Close() {
	s.client.Close()
}
