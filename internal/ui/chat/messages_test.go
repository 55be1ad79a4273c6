// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

func testMessage(id int64, content string, fromAdmin bool) *model.Message {
	m := &model.Message{
		ID:             id,
		ConversationID: 1,
		Type:           model.MessageText,
		Content:        content,
		Date:           time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
	if fromAdmin {
		adminID := int64(9)
		m.FromAdminID = &adminID
	}
	return m
}

// Extents must tile the content exactly: each message starts where the
// previous one ended, and the last one ends at the total line count.
func TestRenderHistory_ExtentsAreContiguous(t *testing.T) {
	theme := styles.NewTheme()
	msgs := []*model.Message{
		testMessage(1, "hello", false),
		testMessage(2, strings.Repeat("word ", 40), true),
		testMessage(3, "short reply", false),
	}

	lines, extents := RenderHistory(msgs, theme, 60)
	if len(extents) != len(msgs) {
		t.Fatalf("extents = %d, want %d", len(extents), len(msgs))
	}

	next := 0
	for i, e := range extents {
		if e.Top != next {
			t.Errorf("extents[%d].Top = %d, want %d", i, e.Top, next)
		}
		if e.Height < 1 {
			t.Errorf("extents[%d].Height = %d, want >= 1", i, e.Height)
		}
		if e.MessageID != msgs[i].ID {
			t.Errorf("extents[%d].MessageID = %d, want %d", i, e.MessageID, msgs[i].ID)
		}
		next = e.Top + e.Height
	}
	if next != len(lines) {
		t.Errorf("extents cover %d lines, content has %d", next, len(lines))
	}
}

func TestRenderHistory_AttachmentShowsFileName(t *testing.T) {
	theme := styles.NewTheme()
	fileID := int64(3)
	msgs := []*model.Message{{
		ID:             1,
		ConversationID: 1,
		Type:           model.MessageFile,
		FileID:         &fileID,
		File:           &model.FileRef{ID: 3, FileName: "week-plan.pdf"},
		Date:           time.Now(),
	}}

	lines, _ := RenderHistory(msgs, theme, 60)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "week-plan.pdf") {
		t.Error("attachment file name missing from rendering")
	}
	if !strings.Contains(joined, "[file]") {
		t.Error("attachment type tag missing from rendering")
	}
}

func TestWrapText_WidthAndWordBreaks(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
	}{
		{"plain words", "the quick brown fox jumps over the lazy dog", 12},
		{"overlong word", "abc " + strings.Repeat("x", 40) + " def", 10},
		{"wide runes", strings.Repeat("日本語", 10), 8},
		{"embedded newlines", "line one\nline two that is rather longer", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := wrapText(tt.in, tt.width)
			for _, line := range strings.Split(out, "\n") {
				if w := runewidth.StringWidth(line); w > tt.width {
					t.Errorf("line %q has width %d, want <= %d", line, w, tt.width)
				}
			}
		})
	}
}

func TestWrapText_EmptyInput(t *testing.T) {
	if got := wrapText("", 10); got != "" {
		t.Errorf("wrapText(\"\") = %q, want empty", got)
	}
}
