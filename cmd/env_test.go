package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single value", input: "alice", expected: []string{"alice"}},
		{name: "multiple values", input: "alice,bob", expected: []string{"alice", "bob"}},
		{name: "values with spaces around comma", input: "alice, bob", expected: []string{"alice", "bob"}},
		{name: "values with leading/trailing spaces", input: "  alice  ,  bob  ", expected: []string{"alice", "bob"}},
		{name: "trailing comma", input: "alice,bob,", expected: []string{"alice", "bob"}},
		{name: "leading comma", input: ",alice,bob", expected: []string{"alice", "bob"}},
		{name: "multiple consecutive commas", input: "alice,,bob", expected: []string{"alice", "bob"}},
		{name: "only commas and spaces", input: ",  , , ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCommaSeparatedList(tt.input))
		})
	}
}

func newFlagCommand(t *testing.T) (*cobra.Command, *string, *bool, *int) {
	t.Helper()
	var (
		s string
		b bool
		n int
	)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&s, "name", "default", "")
	cmd.Flags().BoolVar(&b, "flag", false, "")
	cmd.Flags().IntVar(&n, "count", 1, "")
	return cmd, &s, &b, &n
}

func TestEnvOverride(t *testing.T) {
	t.Run("env applies when flag not set", func(t *testing.T) {
		t.Setenv("QUICKCAL_TEST_NAME", "from-env")
		t.Setenv("QUICKCAL_TEST_FLAG", "true")
		t.Setenv("QUICKCAL_TEST_COUNT", "7")

		cmd, s, b, n := newFlagCommand(t)
		require.NoError(t, cmd.ParseFlags(nil))

		envOverride(cmd, "name", "QUICKCAL_TEST_NAME", s)
		envOverrideBool(cmd, "flag", "QUICKCAL_TEST_FLAG", b)
		envOverrideInt(cmd, "count", "QUICKCAL_TEST_COUNT", n)

		assert.Equal(t, "from-env", *s)
		assert.True(t, *b)
		assert.Equal(t, 7, *n)
	})

	t.Run("explicit flag wins", func(t *testing.T) {
		t.Setenv("QUICKCAL_TEST_NAME", "from-env")
		t.Setenv("QUICKCAL_TEST_COUNT", "7")

		cmd, s, _, n := newFlagCommand(t)
		require.NoError(t, cmd.ParseFlags([]string{"--name", "from-flag", "--count", "3"}))

		envOverride(cmd, "name", "QUICKCAL_TEST_NAME", s)
		envOverrideInt(cmd, "count", "QUICKCAL_TEST_COUNT", n)

		assert.Equal(t, "from-flag", *s)
		assert.Equal(t, 3, *n)
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Setenv("QUICKCAL_TEST_FLAG", "maybe")
		t.Setenv("QUICKCAL_TEST_COUNT", "many")

		cmd, _, b, n := newFlagCommand(t)
		require.NoError(t, cmd.ParseFlags(nil))

		envOverrideBool(cmd, "flag", "QUICKCAL_TEST_FLAG", b)
		envOverrideInt(cmd, "count", "QUICKCAL_TEST_COUNT", n)

		assert.False(t, *b)
		assert.Equal(t, 1, *n)
	})
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("QUICKCAL_TEST_SET", "value")
	assert.Equal(t, "value", getEnvOrDefault("QUICKCAL_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("QUICKCAL_TEST_UNSET", "fallback"))
}
