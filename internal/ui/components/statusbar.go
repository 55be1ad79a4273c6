// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the coachdesk TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/coachdesk-tui/internal/live"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom status bar: connection state, unread count, open
// panel count, and keyboard hints.
type StatusBar struct {
	ConnState     live.State
	UnreadCount   int
	OpenPanels    int
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		ConnState:     live.StateDisconnected,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetConnState updates the displayed connection state.
func (s *StatusBar) SetConnState(state live.State) {
	s.ConnState = state
}

// SetUnread updates the unread conversation count.
func (s *StatusBar) SetUnread(count int) {
	s.UnreadCount = count
}

// SetOpenPanels updates the open panel count.
func (s *StatusBar) SetOpenPanels(count int) {
	s.OpenPanels = count
}

// View renders the status bar.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{s.renderConnState()}

	if s.UnreadCount > 0 {
		badge := s.theme.RosterUnread.Render(fmt.Sprintf("%d unread", s.UnreadCount))
		parts = append(parts, badge)
	}
	if s.OpenPanels > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Render(fmt.Sprintf("%d chats", s.OpenPanels)))
	}

	left := strings.Join(parts, sep)

	right := ""
	if s.ShowShortcuts {
		right = s.renderShortcuts()
	}

	spacing := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return s.theme.StatusBar.
		Width(s.Width).
		Render(left + strings.Repeat(" ", spacing) + right)
}

// renderConnState renders the connection indicator with a shape alongside
// the color so the states stay distinguishable without color.
func (s *StatusBar) renderConnState() string {
	var style lipgloss.Style
	var icon string
	switch s.ConnState {
	case live.StateConnected:
		style = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
		icon = "*"
	case live.StateConnecting, live.StateReconnecting:
		style = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
		icon = "~"
	default:
		style = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
		icon = "x"
	}
	return style.Render(icon + " " + s.ConnState.String())
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^F") + s.theme.ShortcutDesc.Render("search"),
		s.theme.ShortcutKey.Render("^N") + s.theme.ShortcutDesc.Render("new"),
		s.theme.ShortcutKey.Render("Tab") + s.theme.ShortcutDesc.Render("panels"),
		s.theme.ShortcutKey.Render("^Q") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}
