// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatwin manages the floating chat panels.
package chatwin

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// Window is one floating chat panel. It owns a local copy of its
// conversation and message list; both are projections of store state plus
// live appends, never shared slices.
//
// Position is the slot in the panel strip. Positions are recomputed on
// every open and close so they stay contiguous from zero with no gaps.
type Window struct {
	WindowID     string
	Conversation *model.Conversation
	Collapsed    bool
	Position     int
	Messages     []*model.Message

	// LoadingMessages is the display flag for an in-flight initial fetch.
	LoadingMessages bool

	// loading guards the initial/replace fetch: at most one per window.
	loading bool

	// loadingMore guards backward pagination: at most one older-page fetch
	// per window at a time.
	loadingMore bool

	// lastBoundaryID is the most recent older-than cursor that returned an
	// empty page. Asking again with the same cursor is pointless; the
	// guard clears when new history changes the cursor.
	lastBoundaryID int64
}

// newWindowID builds a unique panel id. The uuid alone is unique; the
// timestamp suffix makes ids sortable by creation time in logs.
func newWindowID() string {
	return uuid.NewString() + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// OldestMessageID returns the backward-pagination cursor for this panel.
func (w *Window) OldestMessageID() int64 {
	return model.OldestMessageID(w.Messages)
}

// snapshotMessages returns a copy of the panel's message slice.
func (w *Window) snapshotMessages() []*model.Message {
	out := make([]*model.Message, len(w.Messages))
	copy(out, w.Messages)
	return out
}

// snapshot returns a copy of the panel safe to read off the manager's
// goroutine. Message pointers are shared: messages are only ever replaced
// on upsert, never mutated in place.
func (w *Window) snapshot() *Window {
	return &Window{
		WindowID:        w.WindowID,
		Conversation:    w.Conversation.Clone(),
		Collapsed:       w.Collapsed,
		Position:        w.Position,
		Messages:        w.snapshotMessages(),
		LoadingMessages: w.LoadingMessages,
	}
}
