// Copyright 2024-2026 The Ignite Discord Bridge Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/caarlos0/env/v11"
	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// ErrMissingCredentials is returned when either platform token is absent
// after the config file and environment have been merged.
var ErrMissingCredentials = errors.New("missing credentials")

const (
	defaultIgniteLabel   = "Ignite"
	defaultDiscordLabel  = "Discord"
	defaultRelayTemplate = "[{{.Platform}}] {{.Author}}: {{.Content}}"
)

// Config holds the bridge configuration.
type Config struct {
	Ignite  IgniteConfig  `yaml:"ignite"`
	Discord DiscordConfig `yaml:"discord"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	// AdminAPIAddr is the listen address of the read-only admin API. Empty
	// disables it.
	AdminAPIAddr string `yaml:"admin_api_addr" env:"BRIDGE_ADMIN_API_ADDR"`

	relayTemplate *template.Template `yaml:"-"`
}

type IgniteConfig struct {
	APIURL      string `yaml:"api_url"      env:"IGNITE_API_URL"`
	RealtimeURL string `yaml:"realtime_url" env:"IGNITE_REALTIME_URL"`
	AppKey      string `yaml:"app_key"      env:"IGNITE_APP_KEY"`
	Token       string `yaml:"token"        env:"IGNITE_TOKEN"`
}

type DiscordConfig struct {
	Token string `yaml:"token" env:"DISCORD_TOKEN"`
}

type BridgeConfig struct {
	IgniteLabel       string `yaml:"ignite_label"`
	DiscordLabel      string `yaml:"discord_label"`
	RelayTemplate     string `yaml:"relay_template"`
	KickReason        string `yaml:"kick_reason"`
	OnboardingMessage string `yaml:"onboarding_message"`
	// EventTimeout is in seconds.
	EventTimeout int `yaml:"event_timeout"`
}

// RelayParams holds the parameters for rendering the relay template.
type RelayParams struct {
	Platform string
	Author   string
	Content  string
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	if err := node.Decode((*rawConfig)(c)); err != nil {
		return err
	}
	if c.Bridge.IgniteLabel == "" {
		c.Bridge.IgniteLabel = defaultIgniteLabel
	}
	if c.Bridge.DiscordLabel == "" {
		c.Bridge.DiscordLabel = defaultDiscordLabel
	}
	if c.Bridge.RelayTemplate == "" {
		c.Bridge.RelayTemplate = defaultRelayTemplate
	}
	return nil
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Str, "ignite", "api_url")
	helper.Copy(up.Str, "ignite", "realtime_url")
	helper.Copy(up.Str, "ignite", "app_key")
	helper.Copy(up.Str, "ignite", "token")
	helper.Copy(up.Str, "discord", "token")
	helper.Copy(up.Str, "bridge", "ignite_label")
	helper.Copy(up.Str, "bridge", "discord_label")
	helper.Copy(up.Str, "bridge", "relay_template")
	helper.Copy(up.Str, "bridge", "kick_reason")
	helper.Copy(up.Str, "bridge", "onboarding_message")
	helper.Copy(up.Int, "bridge", "event_timeout")
	helper.Copy(up.Str, "admin_api_addr")
}

// LoadConfig reads the YAML file at path on top of the embedded example
// config, applies environment overrides and validates the result. A missing
// file is not an error; defaults and environment are used alone.
func LoadConfig(path string) (*Config, error) {
	var base yaml.Node
	if err := yaml.Unmarshal([]byte(ExampleConfig), &base); err != nil {
		return nil, fmt.Errorf("failed to parse example config: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		var user yaml.Node
		if err := yaml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if len(user.Content) > 0 {
			upgradeConfig(up.NewHelper(&base, &user))
		}
	}

	var cfg Config
	if err := base.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the bridge cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Ignite.Token == "" {
		missing = append(missing, "ignite.token (IGNITE_TOKEN)")
	}
	if c.Discord.Token == "" {
		missing = append(missing, "discord.token (DISCORD_TOKEN)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, missing)
	}
	if c.Ignite.RealtimeURL == "" || c.Ignite.AppKey == "" {
		return fmt.Errorf("ignite.realtime_url and ignite.app_key must be set")
	}
	if c.Bridge.EventTimeout < 0 {
		return fmt.Errorf("bridge.event_timeout must not be negative")
	}
	return nil
}

func (c *Config) PostProcess() error {
	var err error
	c.relayTemplate, err = template.New("relay").Parse(c.Bridge.RelayTemplate)
	if err != nil {
		return fmt.Errorf("invalid bridge.relay_template: %w", err)
	}
	return nil
}

// EventTimeout returns the per-event deadline, or 0 for none.
func (c *Config) EventTimeout() time.Duration {
	return time.Duration(c.Bridge.EventTimeout) * time.Second
}

// FormatRelay renders a relayed message from the template and params.
func (c *Config) FormatRelay(params RelayParams) string {
	if c.relayTemplate == nil {
		return fallbackRelay(params)
	}
	var buf []byte
	err := c.relayTemplate.Execute(
		(*templateBuffer)(&buf),
		params,
	)
	if err != nil {
		return fallbackRelay(params)
	}
	return string(buf)
}

func fallbackRelay(params RelayParams) string {
	return fmt.Sprintf("[%s] %s: %s", params.Platform, params.Author, params.Content)
}

// templateBuffer is a simple io.Writer that appends to a byte slice.
type templateBuffer []byte

func (b *templateBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
