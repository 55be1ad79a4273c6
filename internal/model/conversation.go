// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// USER SUMMARY
// =============================================================================

// UserSummary is the embedded end-user projection carried by a conversation.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Online    bool   `json:"online"`
	AvatarID  *int64 `json:"avatarFileId,omitempty"`
}

// DisplayName returns the user's full name, or a placeholder when both
// name fields are empty.
func (u UserSummary) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "Unknown client"
	}
	return name
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation identifies a single end-user's message thread with the admin
// side. At most one conversation exists per user id.
//
// Seen transitions to true only via an explicit mark-seen action; only the
// server flips it back to false (on a new incoming message). Client code
// never sets Seen = false locally.
type Conversation struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	FirstMessageID  *int64      `json:"firstMessageId"`
	LastMessageID   *int64      `json:"lastMessageId"`
	LastMessageDate *time.Time  `json:"lastMessageDate"`
	Seen            bool        `json:"seen"`
	SeenAt          *time.Time  `json:"seenAt"`
	User            UserSummary `json:"user"`
	LastMessage     *Message    `json:"lastMessage,omitempty"`
}

// Preview returns a short preview of the last message, or an empty-thread
// placeholder.
func (c *Conversation) Preview(maxLen int) string {
	if c.LastMessage == nil {
		return "No messages yet"
	}
	return c.LastMessage.Preview(maxLen)
}

// Clone returns a deep copy of the conversation. Window projections hold
// clones so roster updates never mutate a window snapshot in place.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	if c.FirstMessageID != nil {
		v := *c.FirstMessageID
		clone.FirstMessageID = &v
	}
	if c.LastMessageID != nil {
		v := *c.LastMessageID
		clone.LastMessageID = &v
	}
	if c.LastMessageDate != nil {
		v := *c.LastMessageDate
		clone.LastMessageDate = &v
	}
	if c.SeenAt != nil {
		v := *c.SeenAt
		clone.SeenAt = &v
	}
	if c.User.AvatarID != nil {
		v := *c.User.AvatarID
		clone.User.AvatarID = &v
	}
	if c.LastMessage != nil {
		msg := *c.LastMessage
		clone.LastMessage = &msg
	}
	return &clone
}
