package credstore

import (
	"fmt"
	"io"
)

// Backend names accepted by Config.Type.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendValkey = "valkey"
)

// Config selects and configures a storage backend.
type Config struct {
	// Type is the backend: "file" (default), "memory" or "valkey".
	Type string

	// Dir is the token directory for the file backend.
	Dir string

	// Valkey configures the valkey backend.
	Valkey ValkeyConfig

	// EncryptionKey enables AES-256-GCM sealing when set (32 bytes).
	EncryptionKey []byte
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type valkeyCloser struct{ s *ValkeyStore }

func (c valkeyCloser) Close() error {
	c.s.Close()
	return nil
}

// New builds the configured store. The returned Closer releases backend
// resources and is never nil.
func New(cfg Config) (Store, io.Closer, error) {
	sealer, err := NewSealer(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Type {
	case "", BackendFile:
		s, err := NewFileStore(cfg.Dir, sealer)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendMemory:
		return NewMemoryStore(sealer), nopCloser{}, nil
	case BackendValkey:
		s, err := NewValkeyStore(cfg.Valkey, sealer)
		if err != nil {
			return nil, nil, err
		}
		return s, valkeyCloser{s}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported credential store type: %s (supported: file, memory, valkey)", cfg.Type)
	}
}
