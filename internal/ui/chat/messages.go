// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
//
// This file renders a message history into content lines and records each
// message's line extent. The extents feed the scroll anchor math that keeps
// the viewport visually stationary when older pages are prepended.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/scroll"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// timestampLayout is the per-message time format.
const timestampLayout = "Jan 2 15:04"

// =============================================================================
// HISTORY RENDERING
// =============================================================================

// RenderHistory renders msgs (already in display order) into content lines
// and one extent per message. Admin messages align right, client messages
// left. Extents are contiguous: each message's Top is the previous bottom.
func RenderHistory(msgs []*model.Message, theme *styles.Theme, width int) ([]string, []scroll.Extent) {
	var lines []string
	extents := make([]scroll.Extent, 0, len(msgs))

	for _, m := range msgs {
		rendered := renderBubble(m, theme, width)
		block := strings.Split(rendered, "\n")
		extents = append(extents, scroll.Extent{
			MessageID: m.ID,
			Top:       len(lines),
			Height:    len(block),
		})
		lines = append(lines, block...)
	}
	return lines, extents
}

// renderBubble draws one message bubble with its timestamp line.
func renderBubble(m *model.Message, theme *styles.Theme, width int) string {
	bubbleWidth := width * 2 / 3
	if bubbleWidth < 20 {
		bubbleWidth = width
	}

	body := bubbleBody(m, theme, bubbleWidth-4)
	stamp := theme.Timestamp.Render(m.Date.Format(timestampLayout))

	var bubble string
	if m.FromAdmin() {
		bubble = theme.AdminBubble.MaxWidth(bubbleWidth).Render(body)
		joined := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, joined)
	}
	bubble = theme.ClientBubble.MaxWidth(bubbleWidth).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

// bubbleBody produces the wrapped bubble content for a message.
func bubbleBody(m *model.Message, theme *styles.Theme, width int) string {
	switch m.Type {
	case model.MessageText:
		return wrapText(m.Content, width)
	case model.MessageImage, model.MessageFile:
		name := "attachment"
		if m.File != nil && m.File.FileName != "" {
			name = m.File.FileName
		}
		note := theme.AttachmentNote.Render("[" + m.Type.String() + "] " + name)
		if m.Content != "" {
			return note + "\n" + wrapText(m.Content, width)
		}
		return note
	default:
		return wrapText(m.Content, width)
	}
}

// wrapText word-wraps s to the given display width, breaking overlong words
// by cell width so double-width runes never overflow a line.
func wrapText(s string, width int) string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, paragraph := range strings.Split(s, "\n") {
		out = append(out, wrapParagraph(paragraph, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapParagraph wraps a single newline-free paragraph.
func wrapParagraph(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			// Break a word longer than the full line at the width boundary.
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			head := runewidth.Truncate(word, width, "")
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
		}
		switch {
		case current == "":
			current = word
		case runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
