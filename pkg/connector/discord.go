// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordSession is the subset of the Discord REST API used by the bridge.
type DiscordSession interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
}

var _ DiscordSession = (*discordgo.Session)(nil)

const discordIntents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent

// openDiscord creates the gateway session and registers the message
// handler before connecting.
func (b *Bridge) openDiscord() (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + b.Config.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordIntents
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.Log.Info().
			Str("discord_user", r.User.Username).
			Int("guilds", len(r.Guilds)).
			Msg("Discord gateway ready")
	})
	session.AddHandler(b.onDiscordMessageCreate)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return session, nil
}
