// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
//
// This file is the update loop: window sizing, keyboard routing by focus
// area, and the resolution of async command results.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/coachdesk-tui/internal/scroll"
	"github.com/jeranaias/coachdesk-tui/internal/ui/components"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		m.refreshRoster()
		m.refreshThread(true)
		if cmd := m.restoreLastSelection(); cmd != nil {
			return m, cmd
		}
		return m, nil

	case PanelsChangedMsg:
		windows := m.manager.Windows()
		m.panels.SetWindows(windows)
		m.statusBar.SetOpenPanels(len(windows))
		return m, nil

	case ConnStateMsg:
		m.statusBar.SetConnState(msg.State)
		return m, nil

	case connectFailedMsg:
		m.statusBar.SetConnState(m.conn.State())
		return m, m.toasts.Push(components.NewErrorToast("Connection failed: " + msg.err.Error()))

	case LiveMessageMsg:
		if msg.ConversationID == m.selectedID() {
			m.refreshThread(true)
			// The echo of an own send always snaps to the latest message.
			if history := m.store.Messages(msg.ConversationID); !m.anchorPending &&
				len(history) > 0 && history[len(history)-1].FromAdmin() {
				m.vp.GotoBottom()
			}
		}
		return m, nil

	case historyLoadedMsg:
		m.refreshRoster()
		if msg.conversationID == m.selectedID() {
			m.refreshThread(false)
			m.vp.GotoBottom()
		}
		return m, nil

	case moreHistoryMsg:
		return m.resolveLoadMore(msg)

	case sendResultMsg:
		if msg.err != nil {
			return m, m.toasts.Push(components.NewErrorToast("Send failed: " + msg.err.Error()))
		}
		m.pickerOverride = nil
		return m, nil

	case usersLoadedMsg:
		if msg.err != nil {
			return m, m.toasts.Push(components.NewErrorToast("Could not load clients: " + msg.err.Error()))
		}
		m.pickerUsers = msg.users
		m.pickerCursor = 0
		return m, nil

	case searchFiredMsg:
		m.rosterPage = 1
		return m, m.fetchConversationsCmd(msg.query, 1, false)

	case loadMoreFiredMsg:
		return m.beginLoadMore()

	case components.ToastExpiredMsg:
		m.toasts.Sweep(time.Now())
		return m, nil
	}

	return m, nil
}

// resize distributes the terminal area across the layout.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.statusBar.SetWidth(width)
	m.panels.SetWidth(width)

	rosterWidth := width / 3
	if rosterWidth > 44 {
		rosterWidth = 44
	}
	m.roster.SetSize(rosterWidth, height-6)

	m.vp.Width = width - rosterWidth - 3
	m.vp.Height = height - 8
	if m.vp.Height < 3 {
		m.vp.Height = 3
	}
	m.input.Width = m.vp.Width - 4
	m.search.Width = rosterWidth - 4
	m.refreshThread(false)
}

// =============================================================================
// KEYBOARD ROUTING
// =============================================================================

// handleKey routes keystrokes by foreground view and focus area.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.mode == viewHome {
		return m.handleHomeKey(msg)
	}

	switch m.focus {
	case focusRoster:
		return m.handleRosterKey(msg)
	case focusInput:
		return m.handleInputKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusPicker:
		return m.handlePickerKey(msg)
	case focusPanels:
		return m.handlePanelKey(msg)
	}
	return m, nil
}

// handleHomeKey handles the overview screen, where floating panels carry
// all chat activity.
func (m *Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.setMode(viewChat)
		m.focus = focusRoster
		return m, nil
	case key.Matches(msg, m.keys.NextPanel):
		m.panels.FocusNext()
		m.focus = focusPanels
		return m, nil
	}
	return m, nil
}

// handleRosterKey drives the conversation list.
func (m *Model) handleRosterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.roster.MoveUp()
	case key.Matches(msg, m.keys.Down):
		if m.roster.MoveDown() {
			m.rosterPage++
			return m, m.fetchConversationsCmd(m.search.Value(), m.rosterPage, true)
		}
	case key.Matches(msg, m.keys.Submit):
		if conv := m.roster.Selected(); conv != nil {
			m.focus = focusInput
			m.input.Focus()
			return m, m.selectConversationCmd(conv.ID)
		}
	case key.Matches(msg, m.keys.OpenPanel):
		// Popping out may fetch history; keep it off the update loop.
		if conv := m.roster.Selected(); conv != nil {
			picked := conv
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
				defer cancel()
				m.manager.OpenChat(ctx, picked, false)
				return PanelsChangedMsg{}
			}
		}
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.NewChat):
		m.focus = focusPicker
		return m, m.fetchUsersCmd("")
	case key.Matches(msg, m.keys.ToggleOffline):
		m.toggleShowOffline()
	case key.Matches(msg, m.keys.NextPanel):
		if len(m.panels.Windows) > 0 {
			m.panels.FocusNext()
			m.focus = focusPanels
		}
	case key.Matches(msg, m.keys.Back):
		m.setMode(viewHome)
	}
	return m, nil
}

// handleInputKey drives the selected thread: composing, sending, and
// scrolling with near-top pagination.
func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			return m, nil
		}
		m.input.Reset()
		var convID *int64
		if id := m.selectedID(); id != 0 {
			convID = &id
		}
		return m, m.sendTextCmd(convID, content, m.pickerOverride)

	case key.Matches(msg, m.keys.PageUp):
		m.vp.ViewUp()
		m.maybeLoadMore()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.vp.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.End):
		m.vp.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.NextPanel):
		if len(m.panels.Windows) > 0 {
			m.panels.FocusNext()
			m.focus = focusPanels
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.focus = focusRoster
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSearchKey drives the roster search field. Keystrokes narrow the
// list instantly from memory; the server search fires on the debounce
// trailing edge.
func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Back):
		m.focus = focusRoster
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	query := m.search.Value()
	m.refreshRoster()
	m.searchDebounce.Trigger(func() {
		m.send(searchFiredMsg{query: query})
	})
	return m, cmd
}

// handlePickerKey drives the new-conversation recipient picker.
func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerCursor < len(m.pickerUsers)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.pickerCursor < len(m.pickerUsers) {
			userID := m.pickerUsers[m.pickerCursor].ID
			m.pickerOverride = &userID
			m.focus = focusInput
			m.input.Focus()
		}
	case key.Matches(msg, m.keys.Back):
		m.focus = focusRoster
		m.pickerUsers = nil
	}
	return m, nil
}

// handlePanelKey drives the focused floating panel.
func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.panels.FocusedWindow()
	if w == nil {
		m.focus = focusRoster
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			return m, nil
		}
		m.input.Reset()
		windowID := w.WindowID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			return sendResultMsg{err: m.manager.SendMessageToChat(ctx, windowID, content)}
		}

	case key.Matches(msg, m.keys.NextPanel):
		m.panels.FocusNext()
		return m, nil
	case key.Matches(msg, m.keys.TogglePanel):
		m.manager.ToggleChat(w.WindowID)
		return m, nil
	case key.Matches(msg, m.keys.ClosePanel):
		m.manager.CloseChat(w.WindowID)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		windowID := w.WindowID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := m.manager.LoadMoreMessagesForChat(ctx, windowID); err != nil {
				return sendResultMsg{err: err}
			}
			return PanelsChangedMsg{}
		}
	case key.Matches(msg, m.keys.Back):
		m.focus = focusRoster
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// BACKWARD PAGINATION
// =============================================================================

// maybeLoadMore arms the debounced load-more when the viewport has scrolled
// near the top of the loaded history.
func (m *Model) maybeLoadMore() {
	if m.selectedID() == 0 || m.loadingMore {
		return
	}
	if !scroll.NearTop(m.metrics(), m.cfg.Scroll.NearTopRows) {
		return
	}
	m.scrollDebounce.Trigger(func() {
		m.send(loadMoreFiredMsg{})
	})
}

// beginLoadMore records the scroll anchor and issues the older-page fetch.
func (m *Model) beginLoadMore() (tea.Model, tea.Cmd) {
	id := m.selectedID()
	if id == 0 || m.loadingMore || len(m.extents) == 0 {
		return m, nil
	}
	beforeID := m.extents[0].MessageID
	m.anchor = scroll.ComputeAnchor(m.extents, m.metrics())
	m.anchorPending = true
	m.loadingMore = true
	return m, m.loadMoreCmd(id, beforeID)
}

// resolveLoadMore merges the fetched page and restores the viewport framing
// so the prepend is visually invisible.
func (m *Model) resolveLoadMore(msg moreHistoryMsg) (tea.Model, tea.Cmd) {
	m.loadingMore = false
	if msg.err != nil {
		m.anchorPending = false
		return m, m.toasts.Push(components.NewErrorToast("Could not load older messages: " + msg.err.Error()))
	}
	if msg.conversationID != m.selectedID() {
		m.anchorPending = false
		return m, nil
	}
	m.refreshThread(false)
	if m.anchorPending && msg.fetched > 0 {
		m.vp.SetYOffset(scroll.RestoreAnchor(m.anchor, m.extents, m.metrics()))
	}
	m.anchorPending = false
	return m, nil
}
