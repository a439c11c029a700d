// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command ignite-discord-bridge relays chat messages between Ignite and
// Discord. Channels are linked at runtime with the !bridge command posted in
// an Ignite channel.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/connector"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const defaultConfigPath = "config.yaml"

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Tag, Commit, BuildTime)
}

func newLogger(w io.Writer, debug, jsonLogs bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if !jsonLogs {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func NewRootCommand() *cobra.Command {
	var (
		configPath string
		debug      bool
		jsonLogs   bool
	)

	cmd := &cobra.Command{
		Use:          "ignite-discord-bridge",
		Short:        "Relay messages between Ignite and Discord",
		Example:      "ignite-discord-bridge --config config.yaml",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), debug, jsonLogs)
			cfg, err := connector.LoadConfig(configPath)
			if err != nil {
				log.Error().Err(err).Str("path", configPath).Msg("Failed to load config")
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bridge := connector.NewBridge(*cfg, log)
			bridge.Version = Tag
			log.Info().Str("version", versionString()).Msg("Starting Ignite-Discord bridge")
			if err := bridge.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Bridge failed to start")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON instead of console output")

	cmd.AddCommand(newVersionCommand(), newExampleConfigCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ignite-discord-bridge", versionString())
		},
	}
}

func newExampleConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Print the example config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), connector.ExampleConfig)
		},
	}
}

func main() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
