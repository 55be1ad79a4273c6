// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the coachdesk TUI.
//
// This file renders the floating chat panel strip that overlays the bottom
// of every screen, the terminal analogue of the dashboard's floating chat
// windows. Collapsed panels shrink to a title bar; the focused panel shows
// its recent messages and input line.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/coachdesk-tui/internal/chatwin"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// =============================================================================
// PANEL STRIP COMPONENT
// =============================================================================

// panelWidth is the rendered width of one floating panel.
const panelWidth = 36

// expandedHistoryRows is how many trailing messages an expanded panel shows.
const expandedHistoryRows = 6

// PanelStrip renders the open chat panels side by side in position order.
type PanelStrip struct {
	Windows []*chatwin.Window
	Focused string // window id of the focused panel, "" for none
	Width   int
	theme   *styles.Theme
}

// NewPanelStrip creates a panel strip component.
func NewPanelStrip(theme *styles.Theme) *PanelStrip {
	return &PanelStrip{theme: theme}
}

// SetWindows replaces the rendered panel set. Windows arrive in position
// order from the manager; a vanished focus falls back to the last panel.
func (p *PanelStrip) SetWindows(windows []*chatwin.Window) {
	p.Windows = windows
	if p.Focused == "" {
		return
	}
	for _, w := range windows {
		if w.WindowID == p.Focused {
			return
		}
	}
	p.Focused = ""
	if len(windows) > 0 {
		p.Focused = windows[len(windows)-1].WindowID
	}
}

// SetWidth updates the available width.
func (p *PanelStrip) SetWidth(width int) {
	p.Width = width
}

// FocusNext cycles focus to the next panel by position.
func (p *PanelStrip) FocusNext() {
	if len(p.Windows) == 0 {
		p.Focused = ""
		return
	}
	for i, w := range p.Windows {
		if w.WindowID == p.Focused {
			p.Focused = p.Windows[(i+1)%len(p.Windows)].WindowID
			return
		}
	}
	p.Focused = p.Windows[0].WindowID
}

// FocusedWindow returns the focused panel, or nil.
func (p *PanelStrip) FocusedWindow() *chatwin.Window {
	for _, w := range p.Windows {
		if w.WindowID == p.Focused {
			return w
		}
	}
	return nil
}

// View renders the strip. Panels past the available width are summarized
// in an overflow count instead of wrapping.
func (p *PanelStrip) View() string {
	if len(p.Windows) == 0 {
		return ""
	}

	fit := p.Width / (panelWidth + 1)
	if fit < 1 {
		fit = 1
	}
	shown := p.Windows
	overflow := 0
	if len(shown) > fit {
		overflow = len(shown) - fit
		shown = shown[len(shown)-fit:]
	}

	var panels []string
	for _, w := range shown {
		panels = append(panels, p.renderPanel(w, w.WindowID == p.Focused))
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Bottom, panels...)

	if overflow > 0 {
		note := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("+" + strconv.Itoa(overflow) + " more")
		strip = lipgloss.JoinHorizontal(lipgloss.Bottom, note, strip)
	}
	return strip
}

// renderPanel draws one panel: title bar only when collapsed, otherwise the
// trailing messages over the title.
func (p *PanelStrip) renderPanel(w *chatwin.Window, focused bool) string {
	dot := p.theme.PresenceOffline.Render("o")
	if w.Conversation.User.Online {
		dot = p.theme.PresenceOnline.Render("*")
	}
	name := runewidth.Truncate(w.Conversation.User.DisplayName(), panelWidth-8, "...")
	title := dot + " " + p.theme.PanelTitle.Render(name)

	if w.Collapsed {
		return p.theme.PanelCollapsed.Width(panelWidth).Render(title)
	}

	var lines []string
	lines = append(lines, title)
	if w.LoadingMessages {
		lines = append(lines, p.theme.AttachmentNote.Render("loading..."))
	} else {
		msgs := w.Messages
		if len(msgs) > expandedHistoryRows {
			msgs = msgs[len(msgs)-expandedHistoryRows:]
		}
		for _, m := range msgs {
			prefix := "< "
			if m.FromAdmin() {
				prefix = "> "
			}
			lines = append(lines, prefix+runewidth.Truncate(m.Preview(panelWidth), panelWidth-6, "..."))
		}
	}

	style := p.theme.Panel
	if focused {
		style = style.BorderForeground(styles.Cyan)
	}
	return style.Width(panelWidth).Render(strings.Join(lines, "\n"))
}
