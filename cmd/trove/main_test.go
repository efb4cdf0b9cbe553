package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/trove/internal/fill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"new", "list", "show", "remove", "edit", "run", "fill", "export", "import", "history", "config", "mcp"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"data-dir", "token", "ending-token"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestQuietCancel(t *testing.T) {
	assert.NoError(t, quietCancel(fill.ErrCancelled))
	assert.NoError(t, quietCancel(fmt.Errorf("tui: %w", fill.ErrCancelled)))

	other := errors.New("boom")
	assert.Equal(t, other, quietCancel(other))
	assert.NoError(t, quietCancel(nil))
}

func TestRunCommand_CopyAndExecExclusive(t *testing.T) {
	runFlags.copy, runFlags.exec = true, true
	t.Cleanup(func() { runFlags.copy, runFlags.exec = false, false })

	err := runCmd.RunE(runCmd, nil)
	assert.ErrorContains(t, err, "mutually exclusive")
}
