package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"convert", "corrections", "learned", "refdata"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestConvertFlags(t *testing.T) {
	for _, flag := range []string{"input", "dry-run", "no-learn"} {
		require.NotNil(t, convertCmd.Flags().Lookup(flag), "flag %q missing", flag)
	}
}

func TestCorrectionsApplyRegistered(t *testing.T) {
	sub := map[string]bool{}
	for _, c := range correctionsCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["apply"])

	require.NotNil(t, correctionsApplyCmd.Flags().Lookup("file"))
}
