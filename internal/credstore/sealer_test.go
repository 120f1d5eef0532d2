package credstore

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	encoded, err := GenerateKey()
	require.NoError(t, err)
	key, err := KeyFromBase64(encoded)
	require.NoError(t, err)

	s, err := NewSealer(key)
	require.NoError(t, err)
	require.NotNil(t, s)

	plaintext := []byte(`{"access_token":"secret"}`)
	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "secret")

	again, err := s.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSealer_Tampered(t *testing.T) {
	key := make([]byte, KeySize)
	s, err := NewSealer(key)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("grant"))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(string(sealed))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := []byte(base64.StdEncoding.EncodeToString(raw))

	_, err = s.Open(tampered)
	assert.Error(t, err)

	_, err = s.Open([]byte("AAAA"))
	assert.Error(t, err)
}

func TestSealer_Disabled(t *testing.T) {
	s, err := NewSealer(nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	out, err := s.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), out)

	out, err = s.Open([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), out)
}

func TestKeyFromBase64(t *testing.T) {
	key, err := KeyFromBase64("")
	require.NoError(t, err)
	assert.Nil(t, key)

	_, err = KeyFromBase64("not base64!")
	assert.Error(t, err)

	_, err = KeyFromBase64(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}
