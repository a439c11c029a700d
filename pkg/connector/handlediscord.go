// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func (b *Bridge) onDiscordMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil {
		return
	}
	b.HandleDiscordMessage(m.Message)
}

// HandleDiscordMessage relays a Discord message into the bridged Ignite
// channel, if any.
func (b *Bridge) HandleDiscordMessage(msg *discordgo.Message) {
	if msg == nil {
		return
	}
	log := b.eventLogger("discord.message_create").With().
		Str("discord_message", msg.ID).
		Str("discord_channel", msg.ChannelID).
		Logger()
	ctx, cancel := b.eventContext()
	defer cancel()
	ctx = log.WithContext(ctx)

	if err := b.relayToIgnite(ctx, msg); err != nil {
		log.Warn().Err(err).Msg("Failed to relay Discord message")
	}
}

func (b *Bridge) relayToIgnite(ctx context.Context, msg *discordgo.Message) error {
	log := zerolog.Ctx(ctx)
	// Echo prevention: relayed messages are posted by the bot.
	if msg.Author == nil || msg.Author.Bot {
		log.Debug().Msg("Skipping bot message (echo prevention)")
		return nil
	}
	target, ok := b.Registry.Lookup(msg.ChannelID)
	if !ok {
		log.Debug().Msg("Channel not bridged, not forwarding")
		return nil
	}

	sent, err := b.ignite.SendMessage(ctx, target, b.relayFromDiscord(msg))
	if err != nil {
		return fmt.Errorf("failed to relay message to ignite channel %s: %w", target, err)
	}
	b.Registry.RegisterCorrelation(sent.ID, msg.ID)
	log.Debug().
		Str("ignite_channel", target).
		Str("ignite_message", sent.ID).
		Msg("Relayed message to Ignite")
	return nil
}
