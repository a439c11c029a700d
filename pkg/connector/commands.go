// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// CommandName identifies a chat command issued from Ignite.
type CommandName string

const (
	CommandPing   CommandName = "ping"
	CommandBridge CommandName = "bridge"
	CommandKick   CommandName = "kick"
)

const commandPrefix = "!"

var (
	errMissingArgument = errors.New("missing argument")
	errNotTextChannel  = errors.New("not a guild text channel")
	errNotBridged      = errors.New("channel is not bridged")
	errNoGuildContext  = errors.New("no guild context")
)

// Command is a parsed chat command.
type Command struct {
	Name CommandName
	Args []string
}

// ParseCommand recognizes a command in message content. Ping must match
// exactly after lowercasing; bridge and kick match by prefix of the
// lowercased content. Arguments are split on single spaces, so repeated
// spaces produce empty arguments.
func ParseCommand(content string) (Command, bool) {
	if !strings.HasPrefix(content, commandPrefix) {
		return Command{}, false
	}
	lower := strings.ToLower(content)
	if lower == commandPrefix+string(CommandPing) {
		return Command{Name: CommandPing}, true
	}
	for _, name := range []CommandName{CommandBridge, CommandKick} {
		if strings.HasPrefix(lower, commandPrefix+string(name)) {
			return Command{Name: name, Args: strings.Split(content, " ")[1:]}, true
		}
	}
	return Command{}, false
}

func (c Command) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// runCommand executes cmd on behalf of a message posted in the Ignite
// channel channelID.
func (b *Bridge) runCommand(ctx context.Context, cmd Command, channelID string) error {
	switch cmd.Name {
	case CommandPing:
		return b.runPing(ctx, channelID)
	case CommandBridge:
		return b.runBridge(ctx, channelID, cmd.arg(0))
	case CommandKick:
		return b.runKick(ctx, channelID, cmd.arg(0))
	default:
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
}

func (b *Bridge) runPing(ctx context.Context, channelID string) error {
	if _, err := b.ignite.SendMessage(ctx, channelID, "pong"); err != nil {
		return fmt.Errorf("failed to reply to ping: %w", err)
	}
	return nil
}

func (b *Bridge) runBridge(ctx context.Context, channelID, discordChannelID string) error {
	if discordChannelID == "" {
		return fmt.Errorf("bridge: %w: discord channel id", errMissingArgument)
	}
	ch, err := b.discord.Channel(discordChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to resolve discord channel %s: %w", discordChannelID, err)
	}
	if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
		return fmt.Errorf("bridge %s: %w", discordChannelID, errNotTextChannel)
	}

	b.Registry.RegisterBridge(channelID, ch.ID)
	zerolog.Ctx(ctx).Info().
		Str("ignite_channel", channelID).
		Str("discord_channel", ch.ID).
		Msg("Channels bridged")

	reply := fmt.Sprintf("Bridged this channel with #%s on Discord.", ch.Name)
	if _, err := b.ignite.SendMessage(ctx, channelID, reply); err != nil {
		return fmt.Errorf("failed to confirm bridge: %w", err)
	}
	return nil
}

func (b *Bridge) runKick(ctx context.Context, channelID, discordUserID string) error {
	if discordUserID == "" {
		return fmt.Errorf("kick: %w: discord user id", errMissingArgument)
	}
	opt := discordgo.WithContext(ctx)

	user, err := b.discord.User(discordUserID, opt)
	if err != nil {
		return fmt.Errorf("failed to resolve discord user %s: %w", discordUserID, err)
	}
	if user == nil {
		return fmt.Errorf("discord user %s not found", discordUserID)
	}

	guildID, err := b.discordGuildFor(ctx, channelID)
	if err != nil {
		return fmt.Errorf("kick %s: %w", user.ID, err)
	}

	member, err := b.discord.GuildMember(guildID, user.ID, opt)
	if err != nil {
		return fmt.Errorf("failed to resolve member %s in guild %s: %w", user.ID, guildID, err)
	}
	if member == nil {
		return fmt.Errorf("member %s not found in guild %s", user.ID, guildID)
	}
	memberID := user.ID
	if member.User != nil && member.User.ID != "" {
		memberID = member.User.ID
	}

	if err := b.discord.GuildMemberDeleteWithReason(guildID, memberID, b.Config.Bridge.KickReason, opt); err != nil {
		return fmt.Errorf("failed to kick %s from guild %s: %w", memberID, guildID, err)
	}
	zerolog.Ctx(ctx).Info().
		Str("guild_id", guildID).
		Str("discord_user", memberID).
		Msg("Kicked Discord member")
	return nil
}

// discordGuildFor returns the guild of the Discord channel bridged with the
// given Ignite channel.
func (b *Bridge) discordGuildFor(ctx context.Context, channelID string) (string, error) {
	target, ok := b.Registry.Lookup(channelID)
	if !ok {
		return "", fmt.Errorf("%w: %s", errNotBridged, channelID)
	}
	ch, err := b.discord.Channel(target, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve discord channel %s: %w", target, err)
	}
	if ch == nil || ch.GuildID == "" {
		return "", fmt.Errorf("%w: discord channel %s", errNoGuildContext, target)
	}
	return ch.GuildID, nil
}
