package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := GetRootCmd()
	assert.Equal(t, "saraswati", cmd.Use)
	assert.Equal(t, version, cmd.Version)

	t.Run("registers serve", func(t *testing.T) {
		var found bool
		for _, sub := range cmd.Commands() {
			if sub.Use == "serve" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("global flags", func(t *testing.T) {
		assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
		assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	})
}

func TestVersionOutput(t *testing.T) {
	cmd := GetRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), version)
}
