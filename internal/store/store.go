// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the authoritative client-side chat state.
package store

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/coachdesk-tui/internal/api"
	"github.com/jeranaias/coachdesk-tui/internal/live"
	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// =============================================================================
// API DEPENDENCY
// =============================================================================

// API is the slice of the admin client the store depends on. Declared here
// so tests can substitute a fake.
type API interface {
	ListConversations(ctx context.Context, search string, page, pageSize int) ([]*model.Conversation, error)
	ListUsersWithoutConversation(ctx context.Context, search string, page, pageSize int) ([]*model.UserSummary, error)
	MarkSeen(ctx context.Context, conversationID int64) error
	ListMessages(ctx context.Context, userID, lastMessageID int64, perPage int) ([]*model.Message, error)
	SendText(ctx context.Context, userID int64, content string) error
	SendFile(ctx context.Context, userID, fileID int64) error
	CreateFile(ctx context.Context, fileName, mimeType string, size int64) (*api.CreateFileResponse, error)
	UploadBytes(ctx context.Context, uploadURL, mimeType string, data []byte) error
	DeleteFile(ctx context.Context, fileID int64) error
}

// NewMessageFunc observes every live message merged into the store. The
// conversation is nil when the message belongs to a thread not yet present
// in the roster.
type NewMessageFunc func(msg *model.Message, conv *model.Conversation)

// =============================================================================
// MESSAGE STORE
// =============================================================================

// MessageStore owns the conversation roster and per-conversation history.
//
// REST fetch completions and live pushes for the same conversation arrive
// in no guaranteed order; both paths merge through the same id-based upsert
// so the result is independent of interleaving.
type MessageStore struct {
	mu sync.Mutex

	api     API
	perPage int

	// Roster state. Entries are replaced, never mutated in place, so the
	// shallow snapshots handed to the render goroutine stay frozen.
	roster  []*model.Conversation
	hasMore bool

	// Per-conversation message history, keyed by conversation id
	messages map[int64][]*model.Message

	// Currently selected conversation on the full chat page (nil = none)
	selected *int64

	// Observers
	nextSubID  int64
	msgSubs    []msgSub
	rosterSubs []rosterSub
}

type msgSub struct {
	id int64
	fn NewMessageFunc
}

type rosterSub struct {
	id int64
	fn func()
}

// NewMessageStore creates a store backed by the given API client.
// perPage is the history page size used for selection reloads.
func NewMessageStore(api API, perPage int) *MessageStore {
	return &MessageStore{
		api:      api,
		perPage:  perPage,
		messages: make(map[int64][]*model.Message),
	}
}

// Attach subscribes the store's live-event handlers on conn and returns a
// release function that unsubscribes all of them. Acquire on mount,
// release on unmount; a remount must never double-register.
func (s *MessageStore) Attach(conn *live.Conn) func() {
	unsubs := []func(){
		conn.Subscribe(live.EventNewMessage, s.handleNewMessage),
		conn.Subscribe(live.EventConversationUpdated, s.handleConversationUpdated),
		conn.Subscribe(live.EventUserConnected, func(data json.RawMessage) { s.handlePresence(data, true) }),
		conn.Subscribe(live.EventUserDisconnected, func(data json.RawMessage) { s.handlePresence(data, false) }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// =============================================================================
// OBSERVER REGISTRATION
// =============================================================================

// OnNewMessageReceived registers a callback invoked after every live
// message merge, and returns its unregister function. This is the only
// integration seam the window manager uses; it never inspects store
// internals directly.
func (s *MessageStore) OnNewMessageReceived(fn NewMessageFunc) func() {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.msgSubs = append(s.msgSubs, msgSub{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.msgSubs {
			if sub.id == id {
				s.msgSubs = append(s.msgSubs[:i:i], s.msgSubs[i+1:]...)
				return
			}
		}
	}
}

// OnRosterChanged registers a callback fired after any roster mutation
// (fetch, upsert, presence patch) and returns its unregister function.
// Open windows use it to mirror presence continuously.
func (s *MessageStore) OnRosterChanged(fn func()) func() {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.rosterSubs = append(s.rosterSubs, rosterSub{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.rosterSubs {
			if sub.id == id {
				s.rosterSubs = append(s.rosterSubs[:i:i], s.rosterSubs[i+1:]...)
				return
			}
		}
	}
}

// notifyRoster invokes roster observers outside the lock.
func (s *MessageStore) notifyRoster() {
	s.mu.Lock()
	snapshot := make([]rosterSub, len(s.rosterSubs))
	copy(snapshot, s.rosterSubs)
	s.mu.Unlock()
	for _, sub := range snapshot {
		sub.fn()
	}
}

// =============================================================================
// ROSTER OPERATIONS
// =============================================================================

// FetchConversations loads one roster page. With appendPage the results
// extend the roster (deduplicated by id); otherwise they replace it.
// hasMore uses the full-page heuristic: a page of exactly pageSize assumes
// another page exists, which costs one empty fetch when the last page is
// exactly full.
//
// This is the page-component entry point: failures are logged and leave an
// empty roster rather than propagating.
func (s *MessageStore) FetchConversations(ctx context.Context, search string, page, pageSize int, appendPage bool) {
	convs, err := s.api.ListConversations(ctx, search, page, pageSize)
	if err != nil {
		log.Printf("store: conversation fetch failed: %v", err)
		s.mu.Lock()
		s.roster = nil
		s.hasMore = false
		s.mu.Unlock()
		s.notifyRoster()
		return
	}

	s.mu.Lock()
	if appendPage {
		for _, conv := range convs {
			s.roster = model.UpsertConversation(s.roster, conv)
		}
	} else {
		s.roster = convs
	}
	s.hasMore = len(convs) >= pageSize
	s.mu.Unlock()
	s.notifyRoster()
}

// FetchUsersWithoutConversation lists candidate recipients with no thread
// yet. Unlike FetchConversations this re-throws, so the picker can surface
// the failure.
func (s *MessageStore) FetchUsersWithoutConversation(ctx context.Context, search string, page, pageSize int) ([]*model.UserSummary, error) {
	return s.api.ListUsersWithoutConversation(ctx, search, page, pageSize)
}

// Conversations returns a snapshot copy of the roster.
func (s *MessageStore) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conversation, len(s.roster))
	copy(out, s.roster)
	return out
}

// HasMore reports whether another roster page is assumed to exist.
func (s *MessageStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Conversation returns the roster entry with the given id, or nil.
func (s *MessageStore) Conversation(id int64) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.FindConversation(s.roster, id)
}

// FilterConversations narrows the in-memory roster by a case-folded match
// on the client name, for instant feedback while the debounced server
// search is still pending.
func (s *MessageStore) FilterConversations(query string) []*model.Conversation {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()
	if needle == "" {
		out := make([]*model.Conversation, len(s.roster))
		copy(out, s.roster)
		return out
	}
	var out []*model.Conversation
	for _, conv := range s.roster {
		if strings.Contains(folder.String(conv.User.DisplayName()), needle) {
			out = append(out, conv)
		}
	}
	return out
}

// UnreadCount returns how many roster entries are currently unseen.
func (s *MessageStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, conv := range s.roster {
		if !conv.Seen {
			count++
		}
	}
	return count
}

// =============================================================================
// SELECTION AND HISTORY
// =============================================================================

// SelectConversation makes id the active conversation on the full chat
// page. A non-nil selection marks the thread seen (optimistically locally,
// then on the server) and reloads its history outright: selection means a
// fresh view, not a merge. Passing nil clears the selection.
func (s *MessageStore) SelectConversation(ctx context.Context, id *int64) {
	s.mu.Lock()
	s.selected = id
	if id == nil {
		s.mu.Unlock()
		return
	}
	conv := model.FindConversation(s.roster, *id)
	var userID int64
	if conv != nil {
		now := time.Now()
		seen := conv.Clone()
		seen.Seen = true
		seen.SeenAt = &now
		s.roster = model.UpsertConversation(s.roster, seen)
		userID = conv.UserID
	}
	s.mu.Unlock()
	s.notifyRoster()

	if err := s.api.MarkSeen(ctx, *id); err != nil {
		log.Printf("store: mark seen failed for conversation %d: %v", *id, err)
	}

	if conv == nil {
		return
	}
	msgs, err := s.api.ListMessages(ctx, userID, 0, s.perPage)
	if err != nil {
		log.Printf("store: history fetch failed for conversation %d: %v", *id, err)
		msgs = nil
	}
	model.SortMessages(msgs)

	s.mu.Lock()
	s.messages[*id] = msgs
	s.mu.Unlock()
}

// Selected returns the currently selected conversation id, or nil.
func (s *MessageStore) Selected() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// LoadMoreMessages fetches a page older than beforeMessageID and prepends
// it to the in-memory history, never replacing what is already loaded.
// Returns the fetched page so callers can tell whether history is
// exhausted. Errors propagate.
func (s *MessageStore) LoadMoreMessages(ctx context.Context, conversationID, beforeMessageID int64) ([]*model.Message, error) {
	s.mu.Lock()
	conv := model.FindConversation(s.roster, conversationID)
	s.mu.Unlock()
	if conv == nil {
		return nil, nil
	}

	page, err := s.api.ListMessages(ctx, conv.UserID, beforeMessageID, s.perPage)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	s.messages[conversationID] = model.MergeMessages(s.messages[conversationID], page)
	s.mu.Unlock()
	return page, nil
}

// Messages returns a snapshot copy of a conversation's loaded history.
func (s *MessageStore) Messages(conversationID int64) []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.messages[conversationID]
	out := make([]*model.Message, len(list))
	copy(out, list)
	return out
}

// =============================================================================
// LIVE EVENT HANDLERS
// =============================================================================

// handleNewMessage merges a pushed message into the history and fans it out
// to every registered observer along with its resolved conversation.
func (s *MessageStore) handleNewMessage(data json.RawMessage) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("store: dropping malformed newMessage payload: %v", err)
		return
	}

	s.mu.Lock()
	s.messages[msg.ConversationID] = model.MergeMessages(s.messages[msg.ConversationID], []*model.Message{&msg})
	conv := model.FindConversation(s.roster, msg.ConversationID)
	subs := make([]msgSub, len(s.msgSubs))
	copy(subs, s.msgSubs)
	s.mu.Unlock()

	// Callbacks run synchronously in registration order, outside the lock.
	for _, sub := range subs {
		sub.fn(&msg, conv)
	}
}

// handleConversationUpdated upserts a roster entry pushed by the server.
// The server is the only party that flips seen back to false.
func (s *MessageStore) handleConversationUpdated(data json.RawMessage) {
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		log.Printf("store: dropping malformed conversationUpdated payload: %v", err)
		return
	}

	s.mu.Lock()
	s.roster = model.UpsertConversation(s.roster, &conv)
	s.mu.Unlock()
	s.notifyRoster()
}

// presencePayload carries the user id of a connect/disconnect event.
type presencePayload struct {
	UserID int64 `json:"userId"`
}

// handlePresence patches the online flag across the roster.
func (s *MessageStore) handlePresence(data json.RawMessage, online bool) {
	var p presencePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("store: dropping malformed presence payload: %v", err)
		return
	}

	s.mu.Lock()
	changed := model.PatchPresence(s.roster, p.UserID, online)
	s.mu.Unlock()
	if changed > 0 {
		s.notifyRoster()
	}
}
