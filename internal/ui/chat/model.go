// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/coachdesk-tui/internal/chatwin"
	"github.com/jeranaias/coachdesk-tui/internal/config"
	"github.com/jeranaias/coachdesk-tui/internal/live"
	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/prefs"
	"github.com/jeranaias/coachdesk-tui/internal/scroll"
	"github.com/jeranaias/coachdesk-tui/internal/store"
	"github.com/jeranaias/coachdesk-tui/internal/ui/components"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
	"github.com/jeranaias/coachdesk-tui/internal/util"
)

// =============================================================================
// VIEW AND FOCUS STATE
// =============================================================================

// viewMode selects the foreground screen.
type viewMode int

const (
	// viewHome is the overview screen; floating panels carry chat there.
	viewHome viewMode = iota
	// viewChat is the full chat page: roster plus selected thread.
	viewChat
)

// focusArea selects which element receives keystrokes on the chat page.
type focusArea int

const (
	focusRoster focusArea = iota
	focusInput
	focusSearch
	focusPicker
	focusPanels
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model for the console.
type Model struct {
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	store   *store.MessageStore
	manager *chatwin.Manager
	conn    *live.Conn

	// prefs persists the show-offline toggle and the last selected thread
	// across sessions. Nil disables persistence.
	prefs *prefs.Store

	// Components
	roster    *components.Roster
	statusBar *components.StatusBar
	toasts    *components.ToastStack
	panels    *components.PanelStrip

	// Thread view
	vp      viewport.Model
	extents []scroll.Extent
	// anchor holds the framing recorded before an in-flight load-more.
	anchor        scroll.Anchor
	anchorPending bool

	// Inputs
	input  textinput.Model
	search textinput.Model

	// New-conversation picker. pickerOverride holds the chosen recipient
	// until the first send creates the thread server-side.
	pickerUsers    []*model.UserSummary
	pickerCursor   int
	pickerOverride *int64

	// loadingMore guards main-thread backward pagination.
	loadingMore bool

	// showOffline keeps offline clients visible in the roster.
	showOffline bool

	// restoredSelection marks the one-shot reselection of the previous
	// session's thread as consumed.
	restoredSelection bool

	// Debouncers for search keystrokes and near-top scroll bursts.
	searchDebounce *util.Debouncer
	scrollDebounce *util.Debouncer

	mode  viewMode
	focus focusArea

	width      int
	height     int
	rosterPage int

	// send forwards messages from debouncer goroutines and external
	// callbacks into the update loop. Wired by SetSender before Run.
	send func(tea.Msg)
}

// New builds the root model around the shared subsystems. prefStore may be
// nil, which disables cross-session persistence.
func New(cfg *config.Config, st *store.MessageStore, mgr *chatwin.Manager, conn *live.Conn, theme *styles.Theme, prefStore *prefs.Store) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 4000

	search := textinput.New()
	search.Placeholder = "Search clients..."
	search.CharLimit = 120

	showOffline := true
	if prefStore != nil {
		showOffline = prefStore.GetBool(prefs.KeyShowOffline, true)
	}

	m := &Model{
		cfg:            cfg,
		theme:          theme,
		keys:           DefaultKeyMap(),
		store:          st,
		manager:        mgr,
		conn:           conn,
		prefs:          prefStore,
		showOffline:    showOffline,
		roster:         components.NewRoster(theme),
		statusBar:      components.NewStatusBar(theme),
		toasts:         components.NewToastStack(theme),
		panels:         components.NewPanelStrip(theme),
		vp:             viewport.New(80, 20),
		input:          input,
		search:         search,
		searchDebounce: util.NewDebouncer(cfg.SearchDebounce()),
		scrollDebounce: util.NewDebouncer(cfg.ScrollDebounce()),
		mode:           viewChat,
		focus:          focusRoster,
		rosterPage:     1,
		send:           func(tea.Msg) {},
	}
	mgr.SetChatViewActive(true)
	return m
}

// SetSender wires the function that pushes external messages into the
// program's update loop. Must be called before the program runs.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Init starts the initial roster fetch and the event-stream connection.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchConversationsCmd("", 1, false),
		m.connectCmd(),
		textinput.Blink,
	)
}

// selectedID returns the store's selected conversation id, or 0.
func (m *Model) selectedID() int64 {
	if id := m.store.Selected(); id != nil {
		return *id
	}
	return 0
}

// setMode switches the foreground screen and keeps the auto-open policy in
// sync: panels only auto-open while the chat page is NOT the foreground.
func (m *Model) setMode(mode viewMode) {
	m.mode = mode
	m.manager.SetChatViewActive(mode == viewChat)
}

// metrics snapshots the thread viewport for the anchor math.
func (m *Model) metrics() scroll.Metrics {
	return scroll.Metrics{
		ScrollOffset:   m.vp.YOffset,
		ViewportHeight: m.vp.Height,
		ContentHeight:  m.vp.TotalLineCount(),
	}
}

// refreshThread re-renders the selected thread into the viewport. When
// follow is true and the viewport was already near the bottom, it stays
// pinned to the latest message.
func (m *Model) refreshThread(follow bool) {
	id := m.selectedID()
	if id == 0 {
		m.vp.SetContent("")
		m.extents = nil
		return
	}
	wasNearBottom := scroll.NearBottom(m.metrics(), m.cfg.Scroll.NearBottomRows)

	msgs := m.store.Messages(id)
	lines, extents := RenderHistory(msgs, m.theme, m.vp.Width)
	m.extents = extents
	m.vp.SetContent(joinLines(lines))

	// Never yank the viewport down while a prepend is waiting to restore
	// its anchor, and otherwise only when already reading the latest.
	if follow && !m.anchorPending && wasNearBottom {
		m.vp.GotoBottom()
	}
}

// refreshRoster re-projects roster state into the list component and the
// status bar badge.
func (m *Model) refreshRoster() {
	query := m.search.Value()
	items := m.store.Conversations()
	if query != "" {
		items = m.store.FilterConversations(query)
	}
	if !m.showOffline {
		items = onlineOnly(items)
	}
	m.roster.SetItems(items)
	m.roster.HasMore = m.store.HasMore()
	m.statusBar.SetUnread(m.store.UnreadCount())
}

// onlineOnly drops conversations whose client is currently offline.
func onlineOnly(items []*model.Conversation) []*model.Conversation {
	var out []*model.Conversation
	for _, conv := range items {
		if conv.User.Online {
			out = append(out, conv)
		}
	}
	return out
}

// toggleShowOffline flips the offline-clients filter and persists it.
func (m *Model) toggleShowOffline() {
	m.showOffline = !m.showOffline
	if m.prefs != nil {
		if err := m.prefs.SetBool(prefs.KeyShowOffline, m.showOffline); err != nil {
			log.Printf("chat: persisting show-offline toggle failed: %v", err)
		}
	}
	m.refreshRoster()
}

// rememberSelection persists the selected thread so the next session can
// reopen it.
func (m *Model) rememberSelection(conversationID int64) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.SetInt64(prefs.KeyLastConversation, conversationID); err != nil {
		log.Printf("chat: persisting last conversation failed: %v", err)
	}
}

// restoreLastSelection reselects the previous session's thread, once, after
// the first non-empty roster arrives. Returns nil when there is nothing to
// restore.
func (m *Model) restoreLastSelection() tea.Cmd {
	if m.restoredSelection || m.prefs == nil {
		return nil
	}
	if len(m.store.Conversations()) == 0 {
		return nil
	}
	m.restoredSelection = true
	if m.selectedID() != 0 {
		return nil
	}
	id := m.prefs.GetInt64(prefs.KeyLastConversation, 0)
	if id == 0 || m.store.Conversation(id) == nil {
		return nil
	}
	return m.selectConversationCmd(id)
}

// joinLines assembles viewport content without a trailing newline.
func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
