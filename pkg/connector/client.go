// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/ignite"
	"github.com/ignite-chat/ignite-discord-bridge/pkg/pusher"
)

// connectRealtime opens the Ignite realtime stream and subscribes to the
// bot's private channel once the server assigns a socket id. Failures are
// logged; the connection is never retried.
func (b *Bridge) connectRealtime(ctx context.Context) {
	endpoint, err := pusher.EndpointURL(b.Config.Ignite.RealtimeURL, b.Config.Ignite.AppKey, ClientName, b.Version)
	if err != nil {
		b.Log.Error().Err(err).Msg("Ignite realtime disabled")
		return
	}

	client := pusher.NewClient(pusher.Options{
		URL:           endpoint,
		Authorizer:    b.ignite,
		Handler:       b.handleIgniteFrame,
		AutoSubscribe: ignite.MakeBotChannel(b.botID),
		Log:           b.Log,
	})
	b.realtime = client
	b.addCloser(client.Close)

	if err := client.Connect(ctx); err != nil {
		b.Log.Error().Err(err).Msg("Ignite realtime connection failed, Ignite events will not be received")
		return
	}
	go func() {
		if err := client.Run(ctx); err != nil {
			b.Log.Error().Err(err).Msg("Ignite realtime connection ended, restart the bridge to recover")
		}
	}()
}

// RealtimeSession reports the state of the Ignite realtime connection.
func (b *Bridge) RealtimeSession() pusher.Session {
	if b.realtime == nil {
		return pusher.Session{State: pusher.StateDisconnected}
	}
	return b.realtime.Session()
}
