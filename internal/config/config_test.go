// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for coachdesk.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Chat.ConversationPageSize != 20 {
		t.Errorf("ConversationPageSize = %d, want 20", cfg.Chat.ConversationPageSize)
	}
	if cfg.Chat.SearchDebounceMs != 500 {
		t.Errorf("SearchDebounceMs = %d, want 500", cfg.Chat.SearchDebounceMs)
	}
	if cfg.Chat.ScrollDebounceMs != 150 {
		t.Errorf("ScrollDebounceMs = %d, want 150", cfg.Chat.ScrollDebounceMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Server.BaseURL)
	}
}

func TestLoadFrom_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[server]
base_url = "https://coach.example.com"
socket_url = "wss://coach.example.com/ws"
token = "tok-123"

[chat]
messages_per_page = 40
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://coach.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.MessagesPerPage != 40 {
		t.Errorf("MessagesPerPage = %d, want 40", cfg.Chat.MessagesPerPage)
	}
	// Unset values fall back to defaults via validation clamping.
	if cfg.Chat.ConversationPageSize != 20 {
		t.Errorf("ConversationPageSize = %d, want default 20", cfg.Chat.ConversationPageSize)
	}
}

func TestValidate_RejectsBadURLs(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "not a url"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidBaseURL) {
		t.Errorf("expected ErrInvalidBaseURL, got %v", err)
	}

	cfg = Default()
	cfg.Server.SocketURL = "https://wrong-scheme.example.com"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSocketURL) {
		t.Errorf("expected ErrInvalidSocketURL, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COACHDESK_BASE_URL", "https://env.example.com")
	t.Setenv("COACHDESK_TOKEN", "env-token")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, want env override", cfg.Server.BaseURL)
	}
	if cfg.Server.Token != "env-token" {
		t.Errorf("Token = %q, want env override", cfg.Server.Token)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://saved.example.com"
	cfg.UI.MaxOpenWindows = 6
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Server.BaseURL != "https://saved.example.com" {
		t.Errorf("BaseURL = %q after round trip", loaded.Server.BaseURL)
	}
	if loaded.UI.MaxOpenWindows != 6 {
		t.Errorf("MaxOpenWindows = %d, want 6", loaded.UI.MaxOpenWindows)
	}
}
