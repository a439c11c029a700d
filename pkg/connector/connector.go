// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/ignite"
	"github.com/ignite-chat/ignite-discord-bridge/pkg/pusher"
)

// ClientName is reported to the realtime endpoint.
const ClientName = "ignite-discord-bridge"

// Bridge relays messages between Ignite and Discord.
type Bridge struct {
	Config   Config
	Registry *Registry
	Log      zerolog.Logger
	// Version is reported to the realtime endpoint.
	Version string

	ignite   *ignite.Client
	discord  DiscordSession
	realtime *pusher.Client
	botID    string

	// ctx is the parent of every per-event context.
	ctx context.Context

	closeMu sync.Mutex
	closers []func()
}

// NewBridge creates a bridge from a validated config. Call Start to connect.
func NewBridge(cfg Config, log zerolog.Logger) *Bridge {
	return &Bridge{
		Config:   cfg,
		Registry: NewRegistry(),
		Log:      log.With().Str("component", "bridge").Logger(),
		Version:  "dev",
		ignite:   ignite.NewClient(cfg.Ignite.APIURL, cfg.Ignite.Token),
	}
}

// Start resolves the bot identity, opens the Discord gateway, connects the
// Ignite realtime stream and starts the admin API. Only identity and Discord
// failures are returned; a failed realtime connection leaves the Ignite side
// inert.
func (b *Bridge) Start(ctx context.Context) error {
	b.ctx = ctx
	if b.Config.relayTemplate == nil {
		if err := b.Config.PostProcess(); err != nil {
			return fmt.Errorf("failed to post-process config: %w", err)
		}
	}

	me, err := b.ignite.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch ignite bot identity: %w", err)
	}
	b.botID = me.ID
	b.Log.Info().
		Str("bot_id", me.ID).
		Str("bot_name", me.DisplayName()).
		Msg("Resolved Ignite bot identity")

	if b.discord == nil {
		session, err := b.openDiscord()
		if err != nil {
			return err
		}
		b.discord = session
		b.addCloser(func() {
			if err := session.Close(); err != nil {
				b.Log.Warn().Err(err).Msg("Failed to close Discord gateway")
			}
		})
	}

	b.connectRealtime(ctx)

	if addr := b.Config.AdminAPIAddr; addr != "" {
		b.startAdminAPI(addr)
	}
	return nil
}

// Run starts the bridge and blocks until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.Stop()
	return nil
}

// Stop closes every connection opened by Start.
func (b *Bridge) Stop() {
	b.closeMu.Lock()
	closers := b.closers
	b.closers = nil
	b.closeMu.Unlock()

	for _, fn := range slices.Backward(closers) {
		fn()
	}
	b.Log.Info().Msg("Bridge stopped")
}

func (b *Bridge) addCloser(fn func()) {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	b.closers = append(b.closers, fn)
}

// BotID returns the Ignite user id of the bot, known after Start.
func (b *Bridge) BotID() string {
	return b.botID
}

// eventContext returns the context for handling one event.
func (b *Bridge) eventContext() (context.Context, context.CancelFunc) {
	parent := b.ctx
	if parent == nil {
		parent = context.Background()
	}
	if timeout := b.Config.EventTimeout(); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// eventLogger tags every log line of one event with a fresh trace id.
func (b *Bridge) eventLogger(event string) zerolog.Logger {
	return b.Log.With().
		Str("trace_id", uuid.NewString()).
		Str("event", event).
		Logger()
}
