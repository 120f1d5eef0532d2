package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// KeySize is the required sealing key length (AES-256).
const KeySize = 32

// Sealer encrypts grant records at rest with AES-256-GCM.
// Sealed output is base64(nonce || ciphertext || tag).
// A nil *Sealer passes data through unchanged.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a sealer for a 32-byte key.
// An empty key returns a nil sealer, meaning records are stored in plaintext.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) == 0 {
		return nil, nil
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be exactly %d bytes (256 bits), got %d bytes", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. A fresh random nonce is used on every call.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	if s == nil {
		return plaintext, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Open reverses Seal and verifies the authentication tag.
func (s *Sealer) Open(encoded []byte) ([]byte, error) {
	if s == nil {
		return encoded, nil
	}

	sealed := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(sealed, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	sealed = sealed[:n]

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// KeyFromBase64 decodes a base64 sealing key, typically from a flag or env var.
// An empty string yields a nil key (sealing disabled).
func KeyFromBase64(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d bytes", KeySize, len(key))
	}
	return key, nil
}

// GenerateKey returns a random sealing key encoded as base64.
// Generate once and keep it; records sealed with a lost key are unreadable.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func encodeRecord(s *Sealer, grant *Grant) ([]byte, error) {
	if grant == nil {
		return nil, fmt.Errorf("grant cannot be nil")
	}
	data, err := marshalGrant(grant)
	if err != nil {
		return nil, err
	}
	return s.Seal(data)
}

func decodeRecord(s *Sealer, data []byte) (*Grant, error) {
	plain, err := s.Open(data)
	if err != nil {
		return nil, err
	}
	return unmarshalGrant(plain)
}
