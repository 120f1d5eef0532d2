package credstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDir is the directory grants are written to when none is configured.
const DefaultDir = "tokens"

// FileStore keeps one file per user under a directory: <dir>/<user>.json.
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so a concurrent Load sees either the old or the new record.
type FileStore struct {
	dir    string
	sealer *Sealer
}

// NewFileStore creates the directory if needed and returns a store rooted there.
// sealer may be nil.
func NewFileStore(dir string, sealer *Sealer) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}
	return &FileStore{dir: dir, sealer: sealer}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(user string) string {
	return filepath.Join(s.dir, user+".json")
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, user string, grant *Grant) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	data, err := encodeRecord(s.sealer, grant)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+user+"-*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path(user)); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, user string) (*Grant, bool, error) {
	if err := ValidateUser(user); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read token file: %w", err)
	}

	grant, err := decodeRecord(s.sealer, data)
	if err != nil {
		return nil, false, fmt.Errorf("token file for %s: %w", user, err)
	}
	return grant, true, nil
}
