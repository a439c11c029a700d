// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/ignite"
	"github.com/ignite-chat/ignite-discord-bridge/pkg/pusher"
)

// handleIgniteFrame decodes a realtime domain frame and dispatches it.
func (b *Bridge) handleIgniteFrame(frame pusher.Frame) {
	if botID, ok := ignite.ParseBotChannel(frame.Channel); ok && botID != b.botID {
		b.Log.Debug().
			Str("channel", frame.Channel).
			Msg("Ignoring frame addressed to another bot")
		return
	}
	evt, err := ignite.DecodeEvent(frame.Event, frame.Payload())
	if err != nil {
		b.Log.Warn().Err(err).Str("event", frame.Event).Msg("Failed to decode realtime event")
		return
	}
	b.HandleIgniteEvent(evt)
}

// HandleIgniteEvent handles one decoded Ignite event under its own deadline.
// Failures are logged and never reach either platform.
func (b *Bridge) HandleIgniteEvent(evt ignite.Event) {
	log := b.eventLogger(evt.EventName())
	ctx, cancel := b.eventContext()
	defer cancel()
	ctx = log.WithContext(ctx)

	var err error
	switch e := evt.(type) {
	case *ignite.MessageCreated:
		err = b.handleMessageCreated(ctx, e)
	case *ignite.MessageDeleted:
		err = b.handleMessageDeleted(ctx, e)
	case *ignite.GuildJoined:
		err = b.handleGuildJoined(ctx, e)
	default:
		log.Debug().Msg("Unhandled event type")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to handle Ignite event")
	}
}

// isBotAuthor reports whether an Ignite message came from a bot, including
// this bridge's own relayed messages.
func (b *Bridge) isBotAuthor(author ignite.User) bool {
	return author.IsBot || (b.botID != "" && author.ID == b.botID)
}

func (b *Bridge) handleMessageCreated(ctx context.Context, evt *ignite.MessageCreated) error {
	msg := evt.Message
	channelID := evt.ChannelID()
	log := zerolog.Ctx(ctx).With().
		Str("message_id", msg.ID).
		Str("channel_id", channelID).
		Str("author_id", msg.Author.ID).
		Logger()
	ctx = log.WithContext(ctx)

	// Echo prevention: relayed messages are posted by the bot.
	if b.isBotAuthor(msg.Author) {
		log.Debug().Msg("Skipping bot message (echo prevention)")
		return nil
	}
	if channelID == "" {
		return fmt.Errorf("message %s has no channel", msg.ID)
	}

	if cmd, ok := ParseCommand(strings.TrimSpace(msg.Content)); ok {
		if err := b.runCommand(ctx, cmd, channelID); err != nil {
			log.Warn().Err(err).Str("command", string(cmd.Name)).Msg("Command failed")
		}
	}
	return b.forwardToDiscord(ctx, channelID, msg)
}

func (b *Bridge) forwardToDiscord(ctx context.Context, channelID string, msg ignite.Message) error {
	target, ok := b.Registry.Lookup(channelID)
	if !ok {
		zerolog.Ctx(ctx).Debug().Msg("Channel not bridged, not forwarding")
		return nil
	}
	opt := discordgo.WithContext(ctx)
	ch, err := b.discord.Channel(target, opt)
	if err != nil {
		return fmt.Errorf("failed to resolve discord channel %s: %w", target, err)
	}
	if ch == nil {
		return fmt.Errorf("discord channel %s not found", target)
	}

	sent, err := b.discord.ChannelMessageSend(ch.ID, b.relayFromIgnite(msg), opt)
	if err != nil {
		return fmt.Errorf("failed to relay message to discord channel %s: %w", ch.ID, err)
	}
	b.Registry.RegisterCorrelation(msg.ID, sent.ID)
	zerolog.Ctx(ctx).Debug().
		Str("discord_channel", ch.ID).
		Str("discord_message", sent.ID).
		Msg("Relayed message to Discord")
	return nil
}

// handleMessageDeleted removes the Discord counterpart of a relayed
// message. Deletions on Discord are not propagated back.
func (b *Bridge) handleMessageDeleted(ctx context.Context, evt *ignite.MessageDeleted) error {
	msg := evt.Message
	log := zerolog.Ctx(ctx).With().
		Str("message_id", msg.ID).
		Str("channel_id", msg.ChannelID).
		Logger()

	counterpart, ok := b.Registry.LookupCorrelation(msg.ID)
	if !ok {
		log.Debug().Msg("No correlated message, nothing to delete")
		return nil
	}
	target, ok := b.Registry.Lookup(msg.ChannelID)
	if !ok {
		return fmt.Errorf("delete %s: %w: %s", msg.ID, errNotBridged, msg.ChannelID)
	}

	opt := discordgo.WithContext(ctx)
	ch, err := b.discord.Channel(target, opt)
	if err != nil {
		return fmt.Errorf("failed to resolve discord channel %s: %w", target, err)
	}
	if ch == nil {
		return fmt.Errorf("discord channel %s not found", target)
	}
	dmsg, err := b.discord.ChannelMessage(ch.ID, counterpart, opt)
	if err != nil {
		return fmt.Errorf("failed to fetch discord message %s: %w", counterpart, err)
	}
	if dmsg == nil {
		return fmt.Errorf("discord message %s not found", counterpart)
	}
	if err := b.discord.ChannelMessageDelete(ch.ID, dmsg.ID, opt); err != nil {
		return fmt.Errorf("failed to delete discord message %s: %w", dmsg.ID, err)
	}
	log.Info().Str("discord_message", dmsg.ID).Msg("Propagated deletion to Discord")
	return nil
}

// handleGuildJoined posts the onboarding message to every text channel of
// the new guild. Each post is independent; one failure does not stop the
// others.
func (b *Bridge) handleGuildJoined(ctx context.Context, evt *ignite.GuildJoined) error {
	log := zerolog.Ctx(ctx).With().Str("guild_id", evt.Guild.ID).Logger()
	channels := evt.Guild.TextChannels()
	log.Info().
		Str("guild_name", evt.Guild.Name).
		Int("text_channels", len(channels)).
		Msg("Joined guild, sending onboarding messages")

	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.ignite.SendMessage(ctx, ch.ChannelID, b.Config.Bridge.OnboardingMessage); err != nil {
				log.Warn().Err(err).Str("channel_id", ch.ChannelID).Msg("Failed to send onboarding message")
			}
		}()
	}
	wg.Wait()
	return nil
}
