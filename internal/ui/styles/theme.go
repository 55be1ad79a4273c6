// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the coachdesk TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// ROSTER STYLES
	// ==========================================================================

	RosterItem         lipgloss.Style
	RosterItemSelected lipgloss.Style
	RosterName         lipgloss.Style
	RosterPreview      lipgloss.Style
	RosterUnread       lipgloss.Style
	PresenceOnline     lipgloss.Style
	PresenceOffline    lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	AdminBubble    lipgloss.Style
	ClientBubble   lipgloss.Style
	AttachmentNote lipgloss.Style
	Timestamp      lipgloss.Style

	// ==========================================================================
	// FLOATING PANEL STYLES
	// ==========================================================================

	Panel          lipgloss.Style
	PanelCollapsed lipgloss.Style
	PanelTitle     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	SearchPrompt     lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme constructs a theme for the current terminal.
func NewTheme() *Theme {
	output := termenv.DefaultOutput()
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: output.Profile == termenv.TrueColor,
		ColorProfile: output.Profile,
		Width:        80,
		Height:       24,
	}
	t.buildStyles()
	return t
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// buildStyles derives every component style from the palette.
func (t *Theme) buildStyles() {
	t.App = lipgloss.NewStyle().
		Background(Surface).
		Foreground(TextPrimary)

	t.Container = lipgloss.NewStyle().
		Padding(0, 1)

	t.RosterItem = lipgloss.NewStyle().
		Padding(0, 1)

	t.RosterItemSelected = lipgloss.NewStyle().
		Padding(0, 1).
		Background(CyanDeep).
		Foreground(TextInverse).
		Bold(true)

	t.RosterName = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.RosterPreview = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.RosterUnread = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Padding(0, 1).
		Bold(true)

	t.PresenceOnline = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.PresenceOffline = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AdminBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.ClientBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.AttachmentNote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelCollapsed = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SearchPrompt = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
