// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pusher

import (
	"encoding/json"
	"strings"
)

// Protocol-level event names.
const (
	EventConnectionEstablished = "pusher:connection_established"
	EventError                 = "pusher:error"
	EventPing                  = "pusher:ping"
	EventSubscribe             = "pusher:subscribe"
	EventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"
)

// Frame is one inbound message on the realtime connection.
type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Payload returns the frame data with the protocol's string encoding
// removed. Servers send data as a JSON-encoded string; data that is already
// an object is returned as is.
func (f Frame) Payload() []byte {
	if len(f.Data) == 0 || f.Data[0] != '"' {
		return f.Data
	}
	var s string
	if err := json.Unmarshal(f.Data, &s); err != nil {
		return f.Data
	}
	return []byte(s)
}

// IsSystemEvent reports whether name belongs to the protocol-control
// namespace rather than to the application.
func IsSystemEvent(name string) bool {
	return strings.HasPrefix(name, "pusher:") || strings.HasPrefix(name, "pusher_internal:")
}

// NeedsAuth reports whether subscribing to channel requires a signed token.
func NeedsAuth(channel string) bool {
	return strings.HasPrefix(channel, "private-") || strings.HasPrefix(channel, "presence-")
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type subscribeData struct {
	Channel string `json:"channel"`
	Auth    string `json:"auth,omitempty"`
}

type connectionEstablished struct {
	SocketID        string `json:"socket_id"`
	ActivityTimeout int    `json:"activity_timeout"`
}

type protocolError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
