// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ignite

import "strings"

const botChannelPrefix = "private-bot."

// MakeBotChannel returns the private realtime channel that carries events
// addressed to the given bot.
func MakeBotChannel(botID string) string {
	return botChannelPrefix + botID
}

// ParseBotChannel extracts the bot ID from a bot channel name.
func ParseBotChannel(channel string) (botID string, ok bool) {
	if !strings.HasPrefix(channel, botChannelPrefix) {
		return "", false
	}
	botID = channel[len(botChannelPrefix):]
	return botID, botID != ""
}

