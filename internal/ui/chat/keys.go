// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
//
// This file defines the keyboard bindings for the console.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the console.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	End           key.Binding
	Submit        key.Binding
	Search        key.Binding
	NewChat       key.Binding
	ToggleOffline key.Binding
	OpenPanel     key.Binding
	NextPanel     key.Binding
	TogglePanel   key.Binding
	ClosePanel    key.Binding
	Back          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings for the console.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "scroll down"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "latest messages"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send / select"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "search clients"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "new conversation"),
		),
		ToggleOffline: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "show/hide offline clients"),
		),
		OpenPanel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "pop out chat"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "cycle panels"),
		),
		TogglePanel: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "collapse panel"),
		),
		ClosePanel: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "close panel"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q", "quit"),
		),
	}
}
