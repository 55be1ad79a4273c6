// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/coachdesk-tui/internal/util"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType identifies the kind of content a message carries.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	return string(t)
}

// FileRef describes an uploaded file attached to a message. Signed URLs are
// time limited; a duplicate push for the same message id may carry a
// refreshed URL and must overwrite the stale one.
type FileRef struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"` // MIME type
	FileName        string    `json:"fileName"`
	SignedURL       string    `json:"signedUrl"`
	SignedURLExpire time.Time `json:"signedUrlExpire"`
}

// Message represents a single chat item in a conversation.
//
// ID is monotonically increasing per conversation and serves as the
// pagination cursor and dedup key. Date is the authoritative ordering key
// for display; the two are consistent but rendering always sorts by Date.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversationId"`
	UserID         int64       `json:"userId"`
	FromAdminID    *int64      `json:"fromAdminId"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	FileID         *int64      `json:"fileId,omitempty"`
	File           *FileRef    `json:"file,omitempty"`
	Date           time.Time   `json:"date"`
}

// FromAdmin reports whether the message was authored by the admin side.
// A nil FromAdminID means the end-user wrote it; this is the sole
// discriminator used for bubble alignment.
func (m *Message) FromAdmin() bool {
	return m.FromAdminID != nil
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.Content
	if m.Type != MessageText {
		if m.File != nil && m.File.FileName != "" {
			content = m.File.FileName
		} else {
			content = "[" + string(m.Type) + "]"
		}
	}
	return util.TruncateString(content, maxLen)
}
