// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ignite

// ChannelTypeText is the channel type discriminator for text channels.
const ChannelTypeText = 0

// User is an Ignite account as embedded in message payloads and returned by
// GET /v1/@me.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	IsBot    bool   `json:"is_bot"`
}

// DisplayName returns the name shown next to relayed messages. Ignite users
// may leave their display name empty, in which case the username is used.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Message is an Ignite chat message.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	ChannelID string `json:"channel_id"`
	Author    User   `json:"author"`
}

// Channel is an Ignite guild channel.
type Channel struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Name      string `json:"name"`
	Type      int    `json:"type"`
	ParentID  string `json:"parent_id,omitempty"`
}

// IsText reports whether messages can be posted to the channel.
func (c Channel) IsText() bool {
	return c.Type == ChannelTypeText
}

// Role is an Ignite guild role. Only carried through for logging.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Guild is an Ignite guild as delivered by the guild.joined event.
type Guild struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Channels []Channel `json:"channels"`
	Roles    []Role    `json:"roles"`
}

// TextChannels returns the guild channels that accept text messages, in
// delivery order.
func (g Guild) TextChannels() []Channel {
	var out []Channel
	for _, ch := range g.Channels {
		if ch.IsText() {
			out = append(out, ch)
		}
	}
	return out
}
