// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package connector implements an Ignite-Discord chat bridge.
//
// # Core Types
//
// [Bridge] owns both platform connections. Ignite events arrive over a
// Pusher protocol stream (see package pusher) on the bot's private channel;
// Discord events arrive over the discordgo gateway. Every event is handled
// on its own goroutine with its own deadline.
//
// [Registry] stores bridged channel pairs and message correlations in
// memory. Links are created at runtime with the !bridge command and are lost
// on restart.
//
// # Commands
//
// Messages posted on Ignite are checked for !ping, !bridge and !kick before
// forwarding. A command message in a bridged channel is still forwarded.
//
// # Echo Prevention
//
// Messages authored by bots on either side are never forwarded or treated
// as commands. Relayed messages are posted by the bridge's own bot accounts,
// so this check is what keeps messages from looping between the platforms.
//
// # Deletions
//
// Deleting a relayed message on Ignite deletes its Discord counterpart.
// Deletions on Discord are not propagated.
package connector
