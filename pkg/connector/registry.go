// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"slices"
	"strings"
	"sync"
)

// Registry holds the bridged channel pairs and the correlations between
// relayed messages. Both tables are symmetric: every write stores the pair
// in both directions. Nothing is persisted.
type Registry struct {
	mu           sync.RWMutex
	bridges      map[string]string
	correlations map[string]string
}

// BridgeLink is one direction of a bridged channel pair.
type BridgeLink struct {
	ID          string `json:"id"`
	Counterpart string `json:"counterpart"`
}

// RegistryStats counts the stored entries. Each pair counts twice.
type RegistryStats struct {
	Bridges      int `json:"bridges"`
	Correlations int `json:"correlations"`
}

func NewRegistry() *Registry {
	return &Registry{
		bridges:      make(map[string]string),
		correlations: make(map[string]string),
	}
}

// RegisterBridge links two channels. Existing links for either ID are
// overwritten, but the old counterpart keeps pointing back at its former
// partner.
func (r *Registry) RegisterBridge(a, b string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bridges[a] = b
	r.bridges[b] = a
}

// Lookup returns the channel bridged with id.
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	other, ok := r.bridges[id]
	return other, ok
}

// RegisterCorrelation records that msgA and msgB are the same message on
// the two platforms.
func (r *Registry) RegisterCorrelation(msgA, msgB string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.correlations[msgA] = msgB
	r.correlations[msgB] = msgA
}

// LookupCorrelation returns the counterpart of a relayed message.
func (r *Registry) LookupCorrelation(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	other, ok := r.correlations[id]
	return other, ok
}

// Bridges returns every stored link sorted by ID.
func (r *Registry) Bridges() []BridgeLink {
	r.mu.RLock()
	links := make([]BridgeLink, 0, len(r.bridges))
	for id, other := range r.bridges {
		links = append(links, BridgeLink{ID: id, Counterpart: other})
	}
	r.mu.RUnlock()

	slices.SortFunc(links, func(x, y BridgeLink) int {
		return strings.Compare(x.ID, y.ID)
	})
	return links
}

func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RegistryStats{
		Bridges:      len(r.bridges),
		Correlations: len(r.correlations),
	}
}
