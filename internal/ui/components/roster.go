// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the coachdesk TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// =============================================================================
// ROSTER LIST COMPONENT
// =============================================================================

// previewWidth is the character budget for the last-message preview line.
const previewWidth = 32

// Roster renders the conversation list with presence dots, unread markers,
// and last-message previews.
type Roster struct {
	Items   []*model.Conversation
	Cursor  int
	Width   int
	Height  int
	HasMore bool
	Loading bool
	theme   *styles.Theme
}

// NewRoster creates a roster list component.
func NewRoster(theme *styles.Theme) *Roster {
	return &Roster{
		Width:  40,
		Height: 20,
		theme:  theme,
	}
}

// SetItems replaces the list and clamps the cursor.
func (r *Roster) SetItems(items []*model.Conversation) {
	r.Items = items
	if r.Cursor >= len(items) {
		r.Cursor = len(items) - 1
	}
	if r.Cursor < 0 {
		r.Cursor = 0
	}
}

// SetSize updates the layout dimensions.
func (r *Roster) SetSize(width, height int) {
	r.Width = width
	r.Height = height
}

// MoveUp moves the cursor up one entry.
func (r *Roster) MoveUp() {
	if r.Cursor > 0 {
		r.Cursor--
	}
}

// MoveDown moves the cursor down one entry. Returns true when the cursor
// lands on the final entry with more pages assumed, the signal to fetch
// the next roster page.
func (r *Roster) MoveDown() bool {
	if r.Cursor < len(r.Items)-1 {
		r.Cursor++
	}
	return r.HasMore && r.Cursor == len(r.Items)-1
}

// Selected returns the conversation under the cursor, or nil.
func (r *Roster) Selected() *model.Conversation {
	if r.Cursor < 0 || r.Cursor >= len(r.Items) {
		return nil
	}
	return r.Items[r.Cursor]
}

// View renders the visible window of the list around the cursor.
func (r *Roster) View() string {
	if len(r.Items) == 0 {
		msg := "No conversations"
		if r.Loading {
			msg = "Loading conversations..."
		}
		return lipgloss.NewStyle().Foreground(styles.TextMuted).Render(msg)
	}

	// Two rows per entry: name line and preview line.
	visible := r.Height / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.Cursor >= visible {
		start = r.Cursor - visible + 1
	}
	end := start + visible
	if end > len(r.Items) {
		end = len(r.Items)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(r.renderItem(r.Items[i], i == r.Cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if r.HasMore && end == len(r.Items) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render("  ...more"))
	}
	return b.String()
}

// renderItem draws one two-line roster entry.
func (r *Roster) renderItem(conv *model.Conversation, selected bool) string {
	dot := r.theme.PresenceOffline.Render("o")
	if conv.User.Online {
		dot = r.theme.PresenceOnline.Render("*")
	}

	name := runewidth.Truncate(conv.User.DisplayName(), r.Width-8, "...")
	nameLine := dot + " " + r.theme.RosterName.Render(name)
	if !conv.Seen {
		nameLine += " " + r.theme.RosterUnread.Render("new")
	}

	preview := runewidth.Truncate(conv.Preview(previewWidth), r.Width-4, "...")
	previewLine := "  " + r.theme.RosterPreview.Render(preview)

	entry := nameLine + "\n" + previewLine
	if selected {
		return r.theme.RosterItemSelected.Width(r.Width).Render(entry)
	}
	return r.theme.RosterItem.Width(r.Width).Render(entry)
}
