// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/connector"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "ignite-discord-bridge", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.True(t, cmd.HasSubCommands())
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("config"))
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
	assert.NotNil(t, cmd.Flags().Lookup("json-logs"))
	assert.Equal(t, defaultConfigPath, cmd.Flags().Lookup("config").DefValue)
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "ignite-discord-bridge "))
	assert.Contains(t, out.String(), Commit)
}

func TestExampleConfigCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"example-config"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, connector.ExampleConfig, out.String())
}

func TestRootCommand_MissingCredentials(t *testing.T) {
	t.Setenv("IGNITE_TOKEN", "")
	t.Setenv("DISCORD_TOKEN", "")
	cmd := NewRootCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--json-logs", "--config", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.ErrorIs(t, err, connector.ErrMissingCredentials)
	assert.Contains(t, stderr.String(), "Failed to load config")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false, true)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	buf.Reset()
	log = newLogger(&buf, true, true)
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
