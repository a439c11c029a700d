// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ignite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIURL is the public Ignite REST API root.
const DefaultAPIURL = "https://api.ignite-chat.com"

// ErrUnexpectedStatus is wrapped by every error caused by a non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// ErrMalformedResponse is returned when a 2xx response lacks required fields.
var ErrMalformedResponse = errors.New("malformed response")

// Client is an authenticated Ignite REST API client.
type Client struct {
	http *resty.Client
}

// NewClient creates a client that sends token as a bearer credential.
func NewClient(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	http := resty.New().
		SetBaseURL(apiURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)
	return &Client{http: http}
}

type channelAuthRequest struct {
	ChannelName string `json:"channel_name"`
	SocketID    string `json:"socket_id"`
}

type channelAuthResponse struct {
	Auth string `json:"auth"`
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// GetMe returns the account the client's token belongs to.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&me).
		Get("/v1/@me")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch bot identity: %w", err)
	}
	if me.ID == "" {
		return nil, fmt.Errorf("failed to fetch bot identity: %w: missing id", ErrMalformedResponse)
	}
	return &me, nil
}

// AuthorizeChannel signs a private channel subscription for the realtime
// connection identified by socketID.
func (c *Client) AuthorizeChannel(ctx context.Context, channelName, socketID string) (string, error) {
	var out channelAuthResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(channelAuthRequest{ChannelName: channelName, SocketID: socketID}).
		SetResult(&out).
		Post("/v1/broadcasting/auth")
	if err := checkResponse(resp, err); err != nil {
		return "", fmt.Errorf("failed to authorize channel %s: %w", channelName, err)
	}
	if out.Auth == "" {
		return "", fmt.Errorf("failed to authorize channel %s: %w: missing auth", channelName, ErrMalformedResponse)
	}
	return out.Auth, nil
}

// SendMessage posts content to an Ignite channel and returns the created
// message.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*Message, error) {
	var msg Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("channelID", channelID).
		SetBody(createMessageRequest{Content: content}).
		SetResult(&msg).
		Post("/v1/channels/{channelID}/messages")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("failed to send message to %s: %w: missing id", channelID, ErrMalformedResponse)
	}
	return &msg, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus,
			resp.Request.Method, resp.Request.URL, resp.StatusCode())
	}
	return nil
}
