// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
//
// This file defines the async commands and the messages they resolve to.
// Every network call runs inside a tea.Cmd; the update loop stays
// non-blocking and sees only the results.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/coachdesk-tui/internal/live"
	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// commandTimeout bounds every command-scoped network call.
const commandTimeout = 30 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// StoreChangedMsg signals that store state (roster or history) changed and
// the view should re-project. Pushed from store callbacks via program.Send.
type StoreChangedMsg struct{}

// PanelsChangedMsg signals that the panel set changed.
type PanelsChangedMsg struct{}

// ConnStateMsg carries an event-stream lifecycle change.
type ConnStateMsg struct {
	State live.State
}

// LiveMessageMsg announces a live message merge, for auto-scroll decisions.
type LiveMessageMsg struct {
	ConversationID int64
}

// historyLoadedMsg resolves a conversation selection.
type historyLoadedMsg struct {
	conversationID int64
}

// moreHistoryMsg resolves a backward-pagination fetch for the main thread.
type moreHistoryMsg struct {
	conversationID int64
	fetched        int
	err            error
}

// sendResultMsg resolves a text or file send.
type sendResultMsg struct {
	err error
}

// usersLoadedMsg resolves the recipient picker fetch.
type usersLoadedMsg struct {
	users []*model.UserSummary
	err   error
}

// searchFiredMsg is emitted by the search debouncer's trailing edge.
type searchFiredMsg struct {
	query string
}

// loadMoreFiredMsg is emitted by the scroll debouncer's trailing edge.
type loadMoreFiredMsg struct{}

// connectFailedMsg reports an initial event-stream connect failure.
type connectFailedMsg struct {
	err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// fetchConversationsCmd loads one roster page. The store swallows failures
// into an empty roster and notifies observers, so the command itself only
// signals completion.
func (m *Model) fetchConversationsCmd(search string, page int, appendPage bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		m.store.FetchConversations(ctx, search, page, m.cfg.Chat.ConversationPageSize, appendPage)
		return StoreChangedMsg{}
	}
}

// selectConversationCmd marks the thread seen, reloads its history, and
// records the selection for the next session.
func (m *Model) selectConversationCmd(conversationID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		id := conversationID
		m.store.SelectConversation(ctx, &id)
		m.rememberSelection(conversationID)
		return historyLoadedMsg{conversationID: conversationID}
	}
}

// loadMoreCmd fetches the history page older than beforeID for the main
// thread view.
func (m *Model) loadMoreCmd(conversationID, beforeID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		page, err := m.store.LoadMoreMessages(ctx, conversationID, beforeID)
		return moreHistoryMsg{conversationID: conversationID, fetched: len(page), err: err}
	}
}

// sendTextCmd sends the composed text to the selected thread, or to a
// picked user when starting a new conversation.
func (m *Model) sendTextCmd(conversationID *int64, content string, userIDOverride *int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return sendResultMsg{err: m.store.SendTextMessage(ctx, conversationID, content, userIDOverride)}
	}
}

// fetchUsersCmd loads recipients without an existing thread for the
// new-conversation picker. Unlike roster fetches this surfaces errors.
func (m *Model) fetchUsersCmd(search string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		users, err := m.store.FetchUsersWithoutConversation(ctx, search, 1, m.cfg.Chat.ConversationPageSize)
		return usersLoadedMsg{users: users, err: err}
	}
}

// connectCmd dials the event stream once; reconnects are the connection's
// own business afterwards.
func (m *Model) connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := m.conn.Connect(ctx); err != nil {
			return connectFailedMsg{err: err}
		}
		return ConnStateMsg{State: m.conn.State()}
	}
}
