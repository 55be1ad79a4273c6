// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for coachdesk.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/coachdesk-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete coachdesk configuration.
type Config struct {
	Version string `toml:"version"`

	// Server holds API and event-stream endpoints plus the admin credential.
	Server ServerConfig `toml:"server"`

	// Chat holds paging and debounce tunables for the chat subsystem.
	Chat ChatConfig `toml:"chat"`

	// Scroll holds the viewport threshold tunables.
	Scroll ScrollConfig `toml:"scroll"`

	// UI holds presentation preferences.
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains endpoint and credential configuration.
type ServerConfig struct {
	// BaseURL is the REST API base, e.g. "https://api.example.com".
	BaseURL string `toml:"base_url"`
	// SocketURL is the event-stream endpoint, e.g. "wss://api.example.com/ws".
	SocketURL string `toml:"socket_url"`
	// Token is the admin API credential. Prefer the COACHDESK_TOKEN
	// environment variable over persisting it here.
	Token string `toml:"token"`
}

// ChatConfig contains paging and debounce tunables.
type ChatConfig struct {
	// ConversationPageSize is the roster page size; hasMore assumes another
	// page whenever a full page comes back.
	ConversationPageSize int `toml:"conversation_page_size"`
	// MessagesPerPage is the history page size for cursor pagination.
	MessagesPerPage int `toml:"messages_per_page"`
	// SearchDebounceMs is the quiet interval before a roster search fires.
	SearchDebounceMs int `toml:"search_debounce_ms"`
	// ScrollDebounceMs is the quiet interval before a near-top scroll burst
	// triggers a load-more.
	ScrollDebounceMs int `toml:"scroll_debounce_ms"`
}

// ScrollConfig contains viewport threshold tunables.
//
// NearTopRows is a fixed row threshold coupled to the message page size.
// Whether it should scale with viewport size is an open tuning question;
// it is exposed here rather than hidden in the view code.
type ScrollConfig struct {
	// NearTopRows triggers backward pagination when the viewport is within
	// this many rows of the top.
	NearTopRows int `toml:"near_top_rows"`
	// NearBottomRows bounds the auto-scroll-to-bottom behavior: new
	// messages only pull the viewport down when it is already within this
	// many rows of the bottom.
	NearBottomRows int `toml:"near_bottom_rows"`
}

// UIConfig contains presentation preferences.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CollapseAutoOpened collapses windows spawned by the auto-open-on-
	// message policy instead of expanding them over the current page.
	CollapseAutoOpened bool `toml:"collapse_auto_opened"`
	// MaxOpenWindows caps the floating window strip.
	MaxOpenWindows int `toml:"max_open_windows"`
}

// Sentinel errors for configuration problems.
var (
	ErrInvalidBaseURL   = errors.New("server.base_url is not a valid URL")
	ErrInvalidSocketURL = errors.New("server.socket_url is not a valid ws:// or wss:// URL")
)

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:   "http://localhost:4000",
			SocketURL: "ws://localhost:4000/ws",
		},
		Chat: ChatConfig{
			ConversationPageSize: 20,
			MessagesPerPage:      25,
			SearchDebounceMs:     500,
			ScrollDebounceMs:     150,
		},
		Scroll: ScrollConfig{
			NearTopRows:    3,
			NearBottomRows: 2,
		},
		UI: UIConfig{
			Theme:              "dark",
			CollapseAutoOpened: false,
			MaxOpenWindows:     4,
		},
	}
}

// Dir returns the coachdesk configuration directory (~/.coachdesk).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coachdesk"), nil
}

// Path returns the config file path (~/.coachdesk/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration from the default path, falling back to defaults
// when the file does not exist, then applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path. A missing file is not
// an error; defaults are used.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies COACHDESK_* environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("COACHDESK_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("COACHDESK_SOCKET_URL"); v != "" {
		c.Server.SocketURL = v
	}
	if v := os.Getenv("COACHDESK_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("COACHDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// Validate checks endpoint URLs and clamps tunables to sane ranges.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	su, err := url.Parse(c.Server.SocketURL)
	if err != nil || (su.Scheme != "ws" && su.Scheme != "wss") || su.Host == "" {
		return ErrInvalidSocketURL
	}

	if c.Chat.ConversationPageSize <= 0 {
		c.Chat.ConversationPageSize = 20
	}
	if c.Chat.MessagesPerPage <= 0 {
		c.Chat.MessagesPerPage = 25
	}
	if c.Chat.SearchDebounceMs <= 0 {
		c.Chat.SearchDebounceMs = 500
	}
	if c.Chat.ScrollDebounceMs <= 0 {
		c.Chat.ScrollDebounceMs = 150
	}
	if c.Scroll.NearTopRows < 0 {
		c.Scroll.NearTopRows = 0
	}
	if c.Scroll.NearBottomRows < 0 {
		c.Scroll.NearBottomRows = 0
	}
	if c.UI.MaxOpenWindows <= 0 {
		c.UI.MaxOpenWindows = 4
	}
	return nil
}

// Save writes the configuration atomically to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration atomically to an explicit path.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// SearchDebounce returns the search debounce interval as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Chat.SearchDebounceMs) * time.Millisecond
}

// ScrollDebounce returns the scroll debounce interval as a duration.
func (c *Config) ScrollDebounce() time.Duration {
	return time.Duration(c.Chat.ScrollDebounceMs) * time.Millisecond
}
