package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"user@gmail.com", "gmail.com"},
		{"bob", "unknown"},
		{"", "unknown"},
		{"trailing@", "unknown"},
		{"a@b@c", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUserDomain(tt.email))
		})
	}
}

func TestAttendeeDomains(t *testing.T) {
	assert.Nil(t, AttendeeDomains(nil))
	assert.Equal(t,
		[]string{"example.com", "unknown", "corp.io"},
		AttendeeDomains([]string{"a@example.com", "bob", "b@example.com", "c@corp.io", "dave"}),
	)
}
