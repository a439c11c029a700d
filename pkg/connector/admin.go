// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// BridgesResponse is the body of GET /api/bridges.
type BridgesResponse struct {
	Bridges []BridgeLink `json:"bridges"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	BotID            string `json:"bot_id"`
	Realtime         string `json:"realtime"`
	SocketID         string `json:"socket_id,omitempty"`
	HeartbeatSeconds int    `json:"heartbeat_seconds"`
	RegistryStats
}

// AdminHandler returns the read-only admin API.
func (b *Bridge) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bridges", b.HandleBridges)
	mux.HandleFunc("/api/status", b.HandleStatus)
	return mux
}

func (b *Bridge) startAdminAPI(addr string) {
	server := &http.Server{
		Addr:         addr,
		Handler:      b.AdminHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		b.Log.Info().Str("addr", addr).Msg("Starting bridge admin API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.Log.Error().Err(err).Msg("Bridge admin API error")
		}
	}()
	b.addCloser(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
}

// HandleBridges is an HTTP handler for GET /api/bridges.
func (b *Bridge) HandleBridges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b.writeJSON(w, BridgesResponse{Bridges: b.Registry.Bridges()})
}

// HandleStatus is an HTTP handler for GET /api/status.
func (b *Bridge) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := b.RealtimeSession()
	b.writeJSON(w, StatusResponse{
		BotID:            b.botID,
		Realtime:         session.State.String(),
		SocketID:         session.SocketID,
		HeartbeatSeconds: int(session.HeartbeatInterval / time.Second),
		RegistryStats:    b.Registry.Stats(),
	})
}

func (b *Bridge) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.Log.Warn().Err(err).Msg("Failed to write admin API response")
	}
}
