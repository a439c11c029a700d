// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/ignite-chat/ignite-discord-bridge/pkg/ignite"
)

// endpointCall records which API endpoints were hit during a test.
type endpointCall struct {
	Method string
	Path   string
	Body   string
}

// fakeIgnite is a test helper that wraps an httptest.Server simulating the
// Ignite REST API. It records calls and provides canned responses.
type fakeIgnite struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []endpointCall
	sent  []sentMessage
	next  int

	// BotID is returned from /v1/@me.
	BotID string
	// Fail maps a path to the status code it should fail with.
	Fail map[string]int
}

type sentMessage struct {
	ChannelID string
	Content   string
}

func newFakeIgnite(t *testing.T) *fakeIgnite {
	t.Helper()
	f := &fakeIgnite{BotID: "bot-1", Fail: make(map[string]int)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakeIgnite) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, endpointCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	code, fail := f.Fail[r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"message":"failure"}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/@me":
		_ = json.NewEncoder(w).Encode(ignite.User{ID: f.BotID, Name: "Bridge", IsBot: true})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/broadcasting/auth":
		_, _ = w.Write([]byte(`{"auth":"app-key:signature"}`))
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/channels/") && strings.HasSuffix(r.URL.Path, "/messages"):
		channelID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/channels/"), "/messages")
		var req struct {
			Content string `json:"content"`
		}
		_ = json.Unmarshal(body, &req)
		f.mu.Lock()
		f.next++
		id := fmt.Sprintf("ig-msg-%d", f.next)
		f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: req.Content})
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(ignite.Message{ID: id, ChannelID: channelID, Content: req.Content})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

// Sent returns the messages posted through the fake.
func (f *fakeIgnite) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]sentMessage, len(f.sent))
	copy(cp, f.sent)
	return cp
}

// Calls returns every recorded request.
func (f *fakeIgnite) Calls() []endpointCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]endpointCall, len(f.calls))
	copy(cp, f.calls)
	return cp
}

var errDiscordNotFound = errors.New("HTTP 404 Not Found")

// fakeDiscord implements DiscordSession in memory.
type fakeDiscord struct {
	mu sync.Mutex

	// Channels maps channel ID to channel. A nil value simulates a null
	// result from the API.
	Channels map[string]*discordgo.Channel
	Users    map[string]*discordgo.User
	// Members maps "guildID:userID" to member.
	Members  map[string]*discordgo.Member
	Messages map[string]*discordgo.Message
	FailSend bool

	sent    []sentMessage
	deleted []string
	kicks   []kickCall
	next    int
}

type kickCall struct {
	GuildID string
	UserID  string
	Reason  string
}

var _ DiscordSession = (*fakeDiscord)(nil)

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		Channels: make(map[string]*discordgo.Channel),
		Users:    make(map[string]*discordgo.User),
		Members:  make(map[string]*discordgo.Member),
		Messages: make(map[string]*discordgo.Message),
	}
}

func (f *fakeDiscord) AddTextChannel(id, guildID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Channels[id] = &discordgo.Channel{ID: id, GuildID: guildID, Name: name, Type: discordgo.ChannelTypeGuildText}
}

func (f *fakeDiscord) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.Channels[channelID]
	if !ok {
		return nil, errDiscordNotFound
	}
	return ch, nil
}

func (f *fakeDiscord) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.Messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, errDiscordNotFound
	}
	return msg, nil
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return nil, errors.New("HTTP 500 Internal Server Error")
	}
	f.next++
	msg := &discordgo.Message{ID: fmt.Sprintf("dc-msg-%d", f.next), ChannelID: channelID, Content: content}
	f.Messages[msg.ID] = msg
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return msg, nil
}

func (f *fakeDiscord) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Messages[messageID]; !ok {
		return errDiscordNotFound
	}
	delete(f.Messages, messageID)
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeDiscord) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[userID]
	if !ok {
		return nil, errDiscordNotFound
	}
	return u, nil
}

func (f *fakeDiscord) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Members[guildID+":"+userID]
	if !ok {
		return nil, errDiscordNotFound
	}
	return m, nil
}

func (f *fakeDiscord) GuildMemberDeleteWithReason(guildID, userID, reason string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, kickCall{GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

func (f *fakeDiscord) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeDiscord) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeDiscord) Kicks() []kickCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kickCall(nil), f.kicks...)
}

func testConfig(apiURL string) Config {
	cfg := Config{
		Ignite: IgniteConfig{
			APIURL:      apiURL,
			RealtimeURL: "ws://127.0.0.1:1/app/{key}",
			AppKey:      "key",
			Token:       "ignite-token",
		},
		Discord: DiscordConfig{Token: "discord-token"},
		Bridge: BridgeConfig{
			IgniteLabel:       "Platform-A",
			DiscordLabel:      "Platform-B",
			RelayTemplate:     defaultRelayTemplate,
			KickReason:        "test kick",
			OnboardingMessage: "welcome",
			EventTimeout:      5,
		},
	}
	if err := cfg.PostProcess(); err != nil {
		panic(err)
	}
	return cfg
}

// newTestBridge returns a bridge wired to fresh fakes, as if Start had
// resolved the bot identity.
func newTestBridge(t *testing.T) (*Bridge, *fakeIgnite, *fakeDiscord) {
	t.Helper()
	fi := newFakeIgnite(t)
	fd := newFakeDiscord()
	b := NewBridge(testConfig(fi.Server.URL), zerolog.Nop())
	b.discord = fd
	b.botID = fi.BotID
	return b, fi, fd
}

func igniteMessage(id, channelID, authorID, content string) *ignite.MessageCreated {
	return &ignite.MessageCreated{
		Message: ignite.Message{
			ID:        id,
			ChannelID: channelID,
			Content:   content,
			Author:    ignite.User{ID: authorID, Name: "Alice", Username: "alice"},
		},
	}
}
