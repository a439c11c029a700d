// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ignite

import (
	"encoding/json"
	"fmt"
)

// Domain event names delivered over the realtime connection.
const (
	EventMessageCreated = "message.created"
	EventMessageDeleted = "message.deleted"
	EventGuildJoined    = "guild.joined"
)

// Event is one decoded realtime domain event. The set of implementations is
// closed: *MessageCreated, *MessageDeleted, *GuildJoined and *UnknownEvent.
type Event interface {
	EventName() string
	isEvent()
}

// MessageCreated is delivered when a message is posted in a channel the bot
// can see.
type MessageCreated struct {
	Channel *Channel `json:"channel,omitempty"`
	Message Message  `json:"message"`
}

// ChannelID returns the channel the message was posted in.
func (e *MessageCreated) ChannelID() string {
	if e.Message.ChannelID != "" {
		return e.Message.ChannelID
	}
	if e.Channel != nil {
		return e.Channel.ChannelID
	}
	return ""
}

// MessageDeleted is delivered when a message is removed.
type MessageDeleted struct {
	Message Message `json:"message"`
}

// GuildJoined is delivered when the bot is added to a guild.
type GuildJoined struct {
	Guild Guild `json:"guild"`
}

// UnknownEvent carries any event name the bridge does not handle.
type UnknownEvent struct {
	Name string
	Data json.RawMessage
}

func (*MessageCreated) EventName() string { return EventMessageCreated }
func (*MessageDeleted) EventName() string { return EventMessageDeleted }
func (*GuildJoined) EventName() string    { return EventGuildJoined }
func (e *UnknownEvent) EventName() string { return e.Name }

func (*MessageCreated) isEvent() {}
func (*MessageDeleted) isEvent() {}
func (*GuildJoined) isEvent()    {}
func (*UnknownEvent) isEvent()   {}

// DecodeEvent decodes the payload of a realtime frame into its typed event.
// data must already be unwrapped from the frame's string encoding.
func DecodeEvent(name string, data []byte) (Event, error) {
	var evt Event
	switch name {
	case EventMessageCreated:
		evt = &MessageCreated{}
	case EventMessageDeleted:
		evt = &MessageDeleted{}
	case EventGuildJoined:
		evt = &GuildJoined{}
	default:
		return &UnknownEvent{Name: name, Data: json.RawMessage(data)}, nil
	}
	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", name, err)
	}
	return evt, nil
}
