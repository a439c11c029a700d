// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pusher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ProtocolVersion is the Pusher wire protocol revision spoken by Client.
const ProtocolVersion = 7

// DefaultActivityTimeout is used when the server announces no usable
// activity timeout.
const DefaultActivityTimeout = 120 * time.Second

var (
	ErrNotConnected = errors.New("realtime connection is not open")
	ErrNoSocketID   = errors.New("no socket id assigned yet")
	ErrNoAuthorizer = errors.New("no authorizer configured")
)

// State is the lifecycle position of a Client.
type State int32

const (
	StateConnecting State = iota
	// StateConnected means the transport is open but the server has not
	// assigned a socket id yet.
	StateConnected
	StateSubscribed
	// StateDisconnected is terminal; a Client is never reconnected.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateDisconnected:
		return "disconnected"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Authorizer signs private channel subscriptions for a socket.
type Authorizer interface {
	AuthorizeChannel(ctx context.Context, channelName, socketID string) (string, error)
}

// Handler receives application (non-system) frames. Each call runs on its
// own goroutine.
type Handler func(Frame)

// Options configures a Client.
type Options struct {
	// URL is the full websocket endpoint, see EndpointURL.
	URL        string
	Authorizer Authorizer
	Handler    Handler
	// AutoSubscribe is subscribed to as soon as the server assigns a socket id.
	AutoSubscribe string
	Dialer        *websocket.Dialer
	Log           zerolog.Logger
}

// Session is a snapshot of the connection state.
type Session struct {
	State             State
	SocketID          string
	HeartbeatInterval time.Duration
}

// Client is a single, non-reconnecting Pusher protocol connection.
type Client struct {
	opts Options
	log  zerolog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu            sync.RWMutex
	state         State
	socketID      string
	heartbeat     time.Duration
	stopHeartbeat chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a client. Call Connect and then Run.
func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		log:  opts.Log.With().Str("component", "pusher").Logger(),
		done: make(chan struct{}),
	}
}

// EndpointURL expands the {key} placeholder in template with appKey and adds
// the protocol, client and version query parameters the server expects.
func EndpointURL(template, appKey, client, version string) (string, error) {
	u, err := url.Parse(strings.ReplaceAll(template, "{key}", url.PathEscape(appKey)))
	if err != nil {
		return "", fmt.Errorf("invalid realtime url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("invalid realtime url: unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("protocol", strconv.Itoa(ProtocolVersion))
	q.Set("client", client)
	q.Set("version", version)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect opens the websocket transport. On failure the client is
// disconnected for good.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)
	dialer := c.opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		c.Close()
		return fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	c.setState(StateConnected)
	c.log.Info().Msg("Realtime transport connected")
	return nil
}

// Run reads frames until the connection closes or ctx is canceled. It
// returns nil when the stop was caused by ctx.
func (c *Client) Run(ctx context.Context) error {
	c.writeMu.Lock()
	conn := c.conn
	c.writeMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.Close()
			if ctx.Err() != nil {
				c.log.Info().Msg("Realtime connection closed")
				return nil
			}
			c.log.Error().Err(err).Msg("Realtime connection lost, not reconnecting")
			return fmt.Errorf("realtime connection lost: %w", err)
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn().Err(err).Msg("Dropping undecodable frame")
			continue
		}
		c.handleFrame(ctx, frame)
	}
}

func (c *Client) handleFrame(ctx context.Context, frame Frame) {
	switch {
	case frame.Event == EventConnectionEstablished:
		c.handleConnectionEstablished(ctx, frame)
	case frame.Event == EventSubscriptionSucceeded:
		c.log.Info().Str("channel", frame.Channel).Msg("Subscription confirmed")
	case frame.Event == EventError:
		var perr protocolError
		_ = json.Unmarshal(frame.Payload(), &perr)
		c.log.Warn().
			Int("code", perr.Code).
			Str("message", perr.Message).
			Msg("Server reported protocol error")
	case IsSystemEvent(frame.Event):
		c.log.Trace().Str("event", frame.Event).Msg("Ignoring system event")
	default:
		if c.opts.Handler == nil {
			return
		}
		go c.opts.Handler(frame)
	}
}

func (c *Client) handleConnectionEstablished(ctx context.Context, frame Frame) {
	var est connectionEstablished
	if err := json.Unmarshal(frame.Payload(), &est); err != nil || est.SocketID == "" {
		c.log.Warn().Err(err).Msg("Malformed connection_established frame")
		return
	}
	interval := time.Duration(est.ActivityTimeout) * time.Second
	if interval <= 0 {
		interval = DefaultActivityTimeout
	}

	c.mu.Lock()
	c.socketID = est.SocketID
	c.heartbeat = interval
	c.mu.Unlock()
	c.startHeartbeat(interval)

	c.log.Info().
		Str("socket_id", est.SocketID).
		Dur("heartbeat_interval", interval).
		Msg("Realtime connection established")

	if channel := c.opts.AutoSubscribe; channel != "" {
		go func() {
			if err := c.Subscribe(ctx, channel); err != nil {
				c.log.Error().Err(err).Str("channel", channel).Msg("Auto-subscription failed")
			}
		}()
	}
}

// Subscribe joins channel on the current connection. Private and presence
// channels are signed through the configured Authorizer first.
func (c *Client) Subscribe(ctx context.Context, channel string) error {
	socketID := c.SocketID()
	if socketID == "" {
		return ErrNoSocketID
	}

	data := subscribeData{Channel: channel}
	if NeedsAuth(channel) {
		if c.opts.Authorizer == nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, ErrNoAuthorizer)
		}
		auth, err := c.opts.Authorizer.AuthorizeChannel(ctx, channel, socketID)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		data.Auth = auth
	}

	if err := c.send(outboundFrame{Event: EventSubscribe, Data: data}); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	c.setState(StateSubscribed)
	c.log.Info().Str("channel", channel).Msg("Subscribed")
	return nil
}

func (c *Client) startHeartbeat(interval time.Duration) {
	c.mu.Lock()
	if c.stopHeartbeat != nil {
		close(c.stopHeartbeat)
	}
	stop := make(chan struct{})
	c.stopHeartbeat = stop
	c.mu.Unlock()

	go c.heartbeatLoop(interval, stop)
}

// heartbeatLoop pings on every tick. Pongs are not tracked.
func (c *Client) heartbeatLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.send(outboundFrame{Event: EventPing}); err != nil {
				c.log.Debug().Err(err).Msg("Failed to send heartbeat")
				continue
			}
			c.log.Trace().Msg("Sent heartbeat")
		}
	}
}

func (c *Client) send(frame outboundFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil || c.State() == StateDisconnected {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(frame)
}

// setState moves the client to next. Disconnected is never left.
func (c *Client) setState(next State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisconnected && next != StateDisconnected {
		return
	}
	c.state = next
}

// Close tears down the connection and resets the session. It is safe to
// call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateDisconnected
		c.socketID = ""
		c.stopHeartbeat = nil
		c.mu.Unlock()
		close(c.done)

		c.writeMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.writeMu.Unlock()
	})
}

// Done is closed once the client is disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SocketID returns the server-assigned socket id, or "" before the
// connection is established.
func (c *Client) SocketID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.socketID
}

// Session returns a snapshot of the connection state.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Session{
		State:             c.state,
		SocketID:          c.socketID,
		HeartbeatInterval: c.heartbeat,
	}
}
