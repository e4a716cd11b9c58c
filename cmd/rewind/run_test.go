package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCommandFlags(t *testing.T) {
	for _, name := range []string{"color", "log-level", "no-banner", "quiet", "debug"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %q", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

// Bare invocation runs an interactive session.
func TestRootDefaultsToRun(t *testing.T) {
	assert.NotNil(t, rootCmd.Run)
}
