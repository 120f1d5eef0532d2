package attendee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	d, err := NewDirectory(map[string]string{
		"alice": "alice@example.com",
		"bob":   "bob@example.org",
		"밥":     "bob@example.kr",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "names resolve case-insensitively",
			in:   []string{"Alice", "BOB"},
			want: []string{"alice@example.com", "bob@example.org"},
		},
		{
			name: "addresses kept verbatim",
			in:   []string{"Carol@Example.com", "x@y"},
			want: []string{"Carol@Example.com", "x@y"},
		},
		{
			name: "non-latin names resolve",
			in:   []string{"alice", "x@y.com", "밥"},
			want: []string{"alice@example.com", "x@y.com", "bob@example.kr"},
		},
		{
			name: "unknown names pass through",
			in:   []string{"dave"},
			want: []string{"dave"},
		},
		{
			name: "empties dropped and whitespace trimmed",
			in:   []string{"", "  ", " alice ", "\tbob@example.org\n"},
			want: []string{"alice@example.com", "bob@example.org"},
		},
		{
			name: "order preserved and duplicates kept",
			in:   []string{"bob", "alice", "bob"},
			want: []string{"bob@example.org", "alice@example.com", "bob@example.org"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Normalize(tt.in))
		})
	}
}

func TestNormalize_NilDirectory(t *testing.T) {
	var d *Directory
	assert.Equal(t, []string{"alice", "a@b.c"}, d.Normalize([]string{" alice", "a@b.c"}))
}

func TestUnresolved(t *testing.T) {
	assert.Nil(t, Unresolved([]string{"a@example.com"}))
	assert.Equal(t, []string{"dave", "erin"}, Unresolved([]string{"dave", "a@example.com", "erin"}))
}
