package attendee

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// DefaultFile is the directory file looked up when none is configured.
const DefaultFile = "attendees.yaml"

// Directory maps lower-cased names to addresses. It is safe for concurrent
// use and can be reloaded while lookups are in progress.
type Directory struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
}

// NewDirectory creates an in-memory directory from entries.
// Invalid entries are reported by the returned error.
func NewDirectory(entries map[string]string) (*Directory, error) {
	normalized, err := normalizeEntries(entries)
	if err != nil {
		return nil, err
	}
	return &Directory{entries: normalized}, nil
}

// LoadFile reads a directory from a YAML file of name: address pairs.
// A missing file yields an empty directory bound to path, so it can be
// created later and picked up by Reload.
func LoadFile(path string) (*Directory, error) {
	d := &Directory{path: path, entries: map[string]string{}}
	if err := d.Reload(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, nil
		}
		return nil, err
	}
	return d, nil
}

// Path returns the backing file, or "" for an in-memory directory.
func (d *Directory) Path() string {
	return d.path
}

// Reload re-reads the backing file. On error the current entries are kept.
func (d *Directory) Reload() error {
	if d.path == "" {
		return nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read attendee directory %s: %w", d.path, err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse attendee directory %s: %w", d.path, err)
	}

	entries, err := normalizeEntries(raw)
	if err != nil {
		return fmt.Errorf("invalid attendee directory %s: %w", d.path, err)
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
	return nil
}

// Lookup returns the address for name, ignoring case and surrounding space.
func (d *Directory) Lookup(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	addr, ok := d.entries[strings.ToLower(strings.TrimSpace(name))]
	return addr, ok
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Names returns the known names in sorted order.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	d.mu.RUnlock()
	sort.Strings(names)
	return names
}

func normalizeEntries(raw map[string]string) (map[string]string, error) {
	entries := make(map[string]string, len(raw))
	for name, addr := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		addr = strings.TrimSpace(addr)
		if key == "" {
			return nil, fmt.Errorf("empty name for address %q", addr)
		}
		if strings.Contains(key, "@") {
			return nil, fmt.Errorf("name %q must not contain '@'", name)
		}
		if !strings.Contains(addr, "@") {
			return nil, fmt.Errorf("address %q for %q is not an email address", addr, name)
		}
		if prev, ok := entries[key]; ok && prev != addr {
			return nil, fmt.Errorf("name %q is listed twice with different addresses", key)
		}
		entries[key] = addr
	}
	return entries, nil
}
