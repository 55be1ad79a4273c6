// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This file implements the id-based merge primitives shared by the message
// store and the floating-window projections. REST page fetches and live
// socket pushes race freely; both paths funnel through UpsertMessage, which
// is commutative and idempotent, so arrival order never matters. Display
// order is always re-derived by SortMessages, never assumed from insertion
// order.
package model

import (
	"sort"
)

// =============================================================================
// MESSAGE MERGE PRIMITIVES
// =============================================================================

// UpsertMessage merges msg into list keyed by id. A duplicate id replaces
// the existing entry (last-write-wins, e.g. a signed URL refresh); a new id
// is appended. Returns the updated list and whether msg was newly added.
func UpsertMessage(list []*Message, msg *Message) ([]*Message, bool) {
	for i, existing := range list {
		if existing.ID == msg.ID {
			list[i] = msg
			return list, false
		}
	}
	return append(list, msg), true
}

// MergeMessages upserts every entry of page into list and returns the
// result sorted by date. Used for both forward (live) and backward
// (pagination) merges; duplicates across the two sources collapse to one
// entry per id.
func MergeMessages(list []*Message, page []*Message) []*Message {
	for _, msg := range page {
		list, _ = UpsertMessage(list, msg)
	}
	SortMessages(list)
	return list
}

// ContainsMessage reports whether list already holds a message with id.
func ContainsMessage(list []*Message, id int64) bool {
	for _, msg := range list {
		if msg.ID == id {
			return true
		}
	}
	return false
}

// SortMessages orders list by date ascending, breaking ties by id so the
// order is total and stable across merges.
func SortMessages(list []*Message) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].ID < list[j].ID
		}
		return list[i].Date.Before(list[j].Date)
	})
}

// OldestMessageID returns the smallest message id in list, or 0 for an
// empty list. Used as the before-cursor for backward pagination.
func OldestMessageID(list []*Message) int64 {
	var oldest int64
	for _, msg := range list {
		if oldest == 0 || msg.ID < oldest {
			oldest = msg.ID
		}
	}
	return oldest
}

// =============================================================================
// CONVERSATION MERGE PRIMITIVES
// =============================================================================

// UpsertConversation merges conv into roster keyed by id: an existing entry
// is updated in place, a new one is appended. Conversations are never
// removed from the roster.
func UpsertConversation(roster []*Conversation, conv *Conversation) []*Conversation {
	for i, existing := range roster {
		if existing.ID == conv.ID {
			roster[i] = conv
			return roster
		}
	}
	return append(roster, conv)
}

// FindConversation returns the roster entry with the given id, or nil.
func FindConversation(roster []*Conversation, id int64) *Conversation {
	for _, conv := range roster {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// FindConversationByUser returns the roster entry owned by userID, or nil.
func FindConversationByUser(roster []*Conversation, userID int64) *Conversation {
	for _, conv := range roster {
		if conv.UserID == userID {
			return conv
		}
	}
	return nil
}

// PatchPresence applies an online-flag change for userID across the roster
// and returns how many entries changed. Matching entries are replaced with
// updated clones, never mutated in place: conversation pointers already
// handed to readers stay frozen.
func PatchPresence(roster []*Conversation, userID int64, online bool) int {
	changed := 0
	for i, conv := range roster {
		if conv.User.ID == userID && conv.User.Online != online {
			updated := conv.Clone()
			updated.User.Online = online
			roster[i] = updated
			changed++
		}
	}
	return changed
}
