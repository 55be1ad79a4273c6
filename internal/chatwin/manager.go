// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatwin manages the floating chat panels.
package chatwin

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/store"
)

// ErrUnknownWindow means the referenced panel id is not open.
var ErrUnknownWindow = errors.New("no open chat panel with that id")

// =============================================================================
// DEPENDENCIES
// =============================================================================

// StateSource is the slice of the message store the manager depends on:
// snapshots to seed panels, observer seams to stay current, and the send
// pipeline to delegate to. The manager never reaches past this interface.
type StateSource interface {
	Messages(conversationID int64) []*model.Message
	Conversations() []*model.Conversation
	OnNewMessageReceived(fn store.NewMessageFunc) func()
	OnRosterChanged(fn func()) func()
	SendTextMessage(ctx context.Context, conversationID *int64, content string, userIDOverride *int64) error
	SendFileMessage(ctx context.Context, conversationID *int64, fileName, mimeType string, data []byte, userIDOverride *int64) error
}

// HistoryFetcher fetches message pages directly, bypassing store state.
// Panels use it for their own history so closing a panel never disturbs
// the store's loaded history.
type HistoryFetcher interface {
	ListMessages(ctx context.Context, userID, lastMessageID int64, perPage int) ([]*model.Message, error)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the set of open panels and the auto-open policy.
type Manager struct {
	mu sync.Mutex

	source  StateSource
	fetcher HistoryFetcher
	perPage int

	// maxOpen caps the strip; opening past it evicts the oldest panel.
	// Zero means unlimited.
	maxOpen int

	// autoCollapse opens auto-opened panels collapsed instead of expanded.
	autoCollapse bool

	windows []*Window

	// chatViewActive suppresses auto-open while the full chat page is the
	// foreground view, since that page already shows every thread.
	chatViewActive bool

	onChange func()
	releases []func()
}

// NewManager creates a panel manager. perPage is the history page size for
// panel-local fetches, maxOpen caps concurrent panels (0 = unlimited), and
// autoCollapse controls whether auto-opened panels start collapsed.
func NewManager(source StateSource, fetcher HistoryFetcher, perPage, maxOpen int, autoCollapse bool) *Manager {
	return &Manager{
		source:       source,
		fetcher:      fetcher,
		perPage:      perPage,
		maxOpen:      maxOpen,
		autoCollapse: autoCollapse,
	}
}

// Attach registers the manager's store observers and returns a release
// function. Acquire on mount, release on unmount.
func (m *Manager) Attach() func() {
	m.mu.Lock()
	m.releases = []func(){
		m.source.OnNewMessageReceived(m.handleNewMessage),
		m.source.OnRosterChanged(m.mirrorRoster),
	}
	releases := m.releases
	m.mu.Unlock()

	return func() {
		for _, release := range releases {
			release()
		}
	}
}

// OnChange registers a single callback fired after any panel mutation, for
// UI refresh.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// notify invokes the change callback outside the lock.
func (m *Manager) notify() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetChatViewActive records whether the full chat page is the foreground
// view. While active, incoming messages never auto-open panels.
func (m *Manager) SetChatViewActive(active bool) {
	m.mu.Lock()
	m.chatViewActive = active
	m.mu.Unlock()
}

// =============================================================================
// PANEL LIFECYCLE
// =============================================================================

// OpenChat opens a panel for conv, or surfaces the existing one: opening
// an already-open conversation uncollapses it rather than duplicating it.
// A new panel seeds its history from the store snapshot; only when that is
// empty does it fetch directly. The returned panel is a snapshot.
func (m *Manager) OpenChat(ctx context.Context, conv *model.Conversation, collapsed bool) *Window {
	m.mu.Lock()
	if w := m.findByConversation(conv.ID); w != nil {
		w.Collapsed = false
		snap := w.snapshot()
		m.mu.Unlock()
		m.notify()
		return snap
	}

	w := &Window{
		WindowID:     newWindowID(),
		Conversation: conv.Clone(),
		Collapsed:    collapsed,
		Messages:     m.source.Messages(conv.ID),
	}
	m.windows = append(m.windows, w)
	if m.maxOpen > 0 && len(m.windows) > m.maxOpen {
		m.windows = m.windows[1:]
	}
	m.renumber()
	needFetch := len(w.Messages) == 0 && m.fetcher != nil
	if needFetch {
		w.LoadingMessages = true
	}
	windowID := w.WindowID
	snap := w.snapshot()
	m.mu.Unlock()
	m.notify()

	if needFetch {
		if err := m.LoadMessagesForChat(ctx, windowID); err != nil {
			log.Printf("chatwin: history fetch for new panel failed: %v", err)
		}
		// The panel may have been evicted or closed while fetching.
		if after := m.Window(windowID); after != nil {
			return after
		}
	}
	return snap
}

// CloseChat removes a panel. Remaining panels are renumbered so positions
// stay contiguous from zero.
func (m *Manager) CloseChat(windowID string) {
	m.mu.Lock()
	for i, w := range m.windows {
		if w.WindowID == windowID {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			m.renumber()
			break
		}
	}
	m.mu.Unlock()
	m.notify()
}

// ToggleChat flips a panel between collapsed and expanded.
func (m *Manager) ToggleChat(windowID string) {
	m.mu.Lock()
	if w := m.findByID(windowID); w != nil {
		w.Collapsed = !w.Collapsed
	}
	m.mu.Unlock()
	m.notify()
}

// IsChatOpen reports whether a panel exists for the conversation.
func (m *Manager) IsChatOpen(conversationID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByConversation(conversationID) != nil
}

// Window returns a snapshot of the open panel with the given id, or nil.
func (m *Manager) Window(windowID string) *Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.findByID(windowID); w != nil {
		return w.snapshot()
	}
	return nil
}

// Windows returns snapshots of the open panels in position order. Each
// entry is a copy: the render goroutine reads them freely while live
// handlers keep mutating the real panels under the manager's lock.
func (m *Manager) Windows() []*Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Window, len(m.windows))
	for i, w := range m.windows {
		out[i] = w.snapshot()
	}
	return out
}

// findByID expects m.mu held.
func (m *Manager) findByID(windowID string) *Window {
	for _, w := range m.windows {
		if w.WindowID == windowID {
			return w
		}
	}
	return nil
}

// findByConversation expects m.mu held.
func (m *Manager) findByConversation(conversationID int64) *Window {
	for _, w := range m.windows {
		if w.Conversation.ID == conversationID {
			return w
		}
	}
	return nil
}

// renumber expects m.mu held.
func (m *Manager) renumber() {
	for i, w := range m.windows {
		w.Position = i
	}
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessageToChat sends text from a panel. The panel is not mutated:
// the sent message appears when the server pushes it back.
func (m *Manager) SendMessageToChat(ctx context.Context, windowID, content string) error {
	m.mu.Lock()
	w := m.findByID(windowID)
	if w == nil {
		m.mu.Unlock()
		return ErrUnknownWindow
	}
	convID := w.Conversation.ID
	m.mu.Unlock()

	return m.source.SendTextMessage(ctx, &convID, content, nil)
}

// SendFileToChat sends a file attachment from a panel.
func (m *Manager) SendFileToChat(ctx context.Context, windowID, fileName, mimeType string, data []byte) error {
	m.mu.Lock()
	w := m.findByID(windowID)
	if w == nil {
		m.mu.Unlock()
		return ErrUnknownWindow
	}
	convID := w.Conversation.ID
	m.mu.Unlock()

	return m.source.SendFileMessage(ctx, &convID, fileName, mimeType, data, nil)
}

// =============================================================================
// PANEL HISTORY
// =============================================================================

// LoadMessagesForChat fetches the latest history page for a panel and
// replaces its list. A fetch already in flight makes this a no-op.
func (m *Manager) LoadMessagesForChat(ctx context.Context, windowID string) error {
	m.mu.Lock()
	w := m.findByID(windowID)
	if w == nil {
		m.mu.Unlock()
		return ErrUnknownWindow
	}
	if w.loading {
		m.mu.Unlock()
		return nil
	}
	w.loading = true
	w.LoadingMessages = true
	userID := w.Conversation.UserID
	m.mu.Unlock()

	page, err := m.fetcher.ListMessages(ctx, userID, 0, m.perPage)

	m.mu.Lock()
	// The panel may have closed while the fetch was in flight.
	if w = m.findByID(windowID); w == nil {
		m.mu.Unlock()
		return err
	}
	w.loading = false
	w.LoadingMessages = false
	if err == nil {
		model.SortMessages(page)
		w.Messages = page
		w.lastBoundaryID = 0
	}
	m.mu.Unlock()
	m.notify()
	return err
}

// LoadMoreMessagesForChat fetches the page older than the panel's oldest
// message and prepends it. Guards: at most one fetch in flight per panel,
// and a cursor that already returned an empty page is never retried. An
// empty result leaves the list untouched.
func (m *Manager) LoadMoreMessagesForChat(ctx context.Context, windowID string) error {
	m.mu.Lock()
	w := m.findByID(windowID)
	if w == nil {
		m.mu.Unlock()
		return ErrUnknownWindow
	}
	beforeID := w.OldestMessageID()
	if w.loadingMore || beforeID == 0 || beforeID == w.lastBoundaryID {
		m.mu.Unlock()
		return nil
	}
	w.loadingMore = true
	userID := w.Conversation.UserID
	m.mu.Unlock()

	page, err := m.fetcher.ListMessages(ctx, userID, beforeID, m.perPage)

	m.mu.Lock()
	if w = m.findByID(windowID); w == nil {
		m.mu.Unlock()
		return err
	}
	w.loadingMore = false
	switch {
	case err != nil:
	case len(page) == 0:
		w.lastBoundaryID = beforeID
	default:
		w.Messages = model.MergeMessages(w.Messages, page)
	}
	m.mu.Unlock()
	m.notify()
	return err
}

// =============================================================================
// STORE OBSERVERS
// =============================================================================

// handleNewMessage routes a live message to its panel, or opens one.
//
// With a panel open the message appends if absent (fetch and push race;
// the id dedup makes order irrelevant) and a collapsed panel expands so
// the coach sees the activity. With no panel open one auto-opens, unless
// the full chat page is active or the thread is unknown to the roster.
func (m *Manager) handleNewMessage(msg *model.Message, conv *model.Conversation) {
	m.mu.Lock()
	if w := m.findByConversation(msg.ConversationID); w != nil {
		w.Messages = model.MergeMessages(w.Messages, []*model.Message{msg})
		if conv != nil {
			w.Conversation = conv.Clone()
		}
		w.Collapsed = false
		m.mu.Unlock()
		m.notify()
		return
	}

	if m.chatViewActive || conv == nil {
		m.mu.Unlock()
		return
	}
	collapsed := m.autoCollapse
	m.mu.Unlock()

	m.OpenChat(context.Background(), conv, collapsed)
}

// mirrorRoster refreshes each panel's conversation copy from the roster,
// keeping presence dots and seen state current without sharing pointers.
func (m *Manager) mirrorRoster() {
	roster := m.source.Conversations()

	m.mu.Lock()
	changed := false
	for _, w := range m.windows {
		if conv := model.FindConversation(roster, w.Conversation.ID); conv != nil {
			w.Conversation = conv.Clone()
			changed = true
		}
	}
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}
