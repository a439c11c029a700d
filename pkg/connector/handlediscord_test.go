// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func discordMessage(id, channelID string, author *discordgo.User, content string) *discordgo.Message {
	return &discordgo.Message{ID: id, ChannelID: channelID, Author: author, Content: content}
}

// A Discord message in a bridged channel is relayed to Ignite and correlated
// with the relayed copy.
func TestRelayToIgnite(t *testing.T) {
	t.Parallel()
	b, fi, _ := newTestBridge(t)
	b.Registry.RegisterBridge("C1", "D1")

	b.HandleDiscordMessage(discordMessage("X1", "D1", &discordgo.User{ID: "DU1", Username: "alice"}, "hi"))

	assert.Equal(t, []sentMessage{{ChannelID: "C1", Content: "[Platform-B] alice: hi"}}, fi.Sent())
	assertLookup(t, b.Registry.LookupCorrelation, "ig-msg-1", "X1")
	assertLookup(t, b.Registry.LookupCorrelation, "X1", "ig-msg-1")
}

func TestRelayToIgnite_Skipped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  *discordgo.Message
	}{
		{"bot author", discordMessage("X1", "D1", &discordgo.User{ID: "B", Username: "bot", Bot: true}, "hi")},
		{"no author", discordMessage("X2", "D1", nil, "hi")},
		{"unbridged channel", discordMessage("X3", "D9", &discordgo.User{ID: "DU1", Username: "alice"}, "hi")},
		{"nil message", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, fi, _ := newTestBridge(t)
			b.Registry.RegisterBridge("C1", "D1")

			b.HandleDiscordMessage(tt.msg)

			assert.Empty(t, fi.Sent())
		})
	}
}

func TestRelayToIgnite_SendFailure(t *testing.T) {
	t.Parallel()
	b, fi, _ := newTestBridge(t)
	b.Registry.RegisterBridge("C1", "D1")
	fi.Fail["/v1/channels/C1/messages"] = http.StatusBadGateway

	b.HandleDiscordMessage(discordMessage("X1", "D1", &discordgo.User{ID: "DU1", Username: "alice"}, "hi"))

	_, ok := b.Registry.LookupCorrelation("X1")
	assert.False(t, ok, "failed send must not register a correlation")
}

func TestOnDiscordMessageCreate(t *testing.T) {
	t.Parallel()
	b, fi, _ := newTestBridge(t)
	b.Registry.RegisterBridge("C1", "D1")

	b.onDiscordMessageCreate(nil, &discordgo.MessageCreate{
		Message: discordMessage("X1", "D1", &discordgo.User{ID: "DU1", Username: "bob"}, "yo"),
	})
	b.onDiscordMessageCreate(nil, nil)

	assert.Equal(t, []sentMessage{{ChannelID: "C1", Content: "[Platform-B] bob: yo"}}, fi.Sent())
}

// Both directions share one correlation table.
func TestRoundTripCorrelationBothDirections(t *testing.T) {
	t.Parallel()
	b, _, fd := newTestBridge(t)
	fd.AddTextChannel("D1", "G1", "general")
	b.Registry.RegisterBridge("C1", "D1")

	b.HandleIgniteEvent(igniteMessage("M1", "C1", "U1", "from ignite"))
	b.HandleDiscordMessage(discordMessage("X1", "D1", &discordgo.User{ID: "DU1", Username: "alice"}, "from discord"))

	assertLookup(t, b.Registry.LookupCorrelation, "M1", "dc-msg-1")
	assertLookup(t, b.Registry.LookupCorrelation, "X1", "ig-msg-1")
}
