// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"github.com/bwmarrin/discordgo"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/ignite"
)

// relayFromIgnite renders an Ignite message for posting on Discord.
func (b *Bridge) relayFromIgnite(msg ignite.Message) string {
	return b.Config.FormatRelay(RelayParams{
		Platform: b.Config.Bridge.IgniteLabel,
		Author:   msg.Author.DisplayName(),
		Content:  msg.Content,
	})
}

// relayFromDiscord renders a Discord message for posting on Ignite.
func (b *Bridge) relayFromDiscord(msg *discordgo.Message) string {
	return b.Config.FormatRelay(RelayParams{
		Platform: b.Config.Bridge.DiscordLabel,
		Author:   msg.Author.Username,
		Content:  msg.Content,
	})
}
