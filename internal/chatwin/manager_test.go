// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatwin manages the floating chat panels.
package chatwin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/store"
)

// fakeSource is an in-memory stand-in for the message store.
type fakeSource struct {
	mu       sync.Mutex
	messages map[int64][]*model.Message
	roster   []*model.Conversation

	msgFns    []store.NewMessageFunc
	rosterFns []func()

	sentText []string
	sentConv []int64
	sentFile []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{messages: make(map[int64][]*model.Message)}
}

func (f *fakeSource) Messages(conversationID int64) []*model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.messages[conversationID]
	out := make([]*model.Message, len(list))
	copy(out, list)
	return out
}

func (f *fakeSource) Conversations() []*model.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Conversation, len(f.roster))
	copy(out, f.roster)
	return out
}

func (f *fakeSource) OnNewMessageReceived(fn store.NewMessageFunc) func() {
	f.msgFns = append(f.msgFns, fn)
	return func() {}
}

func (f *fakeSource) OnRosterChanged(fn func()) func() {
	f.rosterFns = append(f.rosterFns, fn)
	return func() {}
}

func (f *fakeSource) SendTextMessage(_ context.Context, conversationID *int64, content string, _ *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentText = append(f.sentText, content)
	f.sentConv = append(f.sentConv, *conversationID)
	return nil
}

func (f *fakeSource) SendFileMessage(_ context.Context, conversationID *int64, fileName, _ string, _ []byte, _ *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentFile = append(f.sentFile, fileName)
	f.sentConv = append(f.sentConv, *conversationID)
	return nil
}

// push simulates the store's live fan-out: merge into store state first,
// then deliver to observers, matching the real ordering.
func (f *fakeSource) push(msg *model.Message, conv *model.Conversation) {
	f.mu.Lock()
	f.messages[msg.ConversationID] = model.MergeMessages(f.messages[msg.ConversationID], []*model.Message{msg})
	f.mu.Unlock()
	for _, fn := range f.msgFns {
		fn(msg, conv)
	}
}

// fakeFetcher serves history pages keyed by the older-than cursor.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int64][]*model.Message
	calls []int64
}

func (f *fakeFetcher) ListMessages(_ context.Context, _ int64, lastMessageID int64, _ int) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lastMessageID)
	return f.pages[lastMessageID], nil
}

func conv(id, userID int64, name string) *model.Conversation {
	return &model.Conversation{
		ID:     id,
		UserID: userID,
		User:   model.UserSummary{ID: userID, FirstName: name},
	}
}

func msg(id, convID int64, date time.Time) *model.Message {
	return &model.Message{ID: id, ConversationID: convID, Type: model.MessageText, Date: date}
}

func newTestManager(src *fakeSource, fetch *fakeFetcher) *Manager {
	m := NewManager(src, fetch, 25, 0, false)
	m.Attach()
	return m
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestOpenChat_SeedsFromStore(t *testing.T) {
	src := newFakeSource()
	src.messages[1] = []*model.Message{msg(1, 1, time.Now())}
	m := newTestManager(src, &fakeFetcher{})

	w := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)
	if len(w.Messages) != 1 {
		t.Errorf("seeded messages = %d, want 1", len(w.Messages))
	}
	if w.LoadingMessages {
		t.Error("panel with a non-empty seed should not be loading")
	}
	// The seed is a copy, not the store's slice.
	w.Messages[0] = msg(99, 1, time.Now())
	if src.Messages(1)[0].ID != 1 {
		t.Error("panel mutation leaked into store state")
	}
}

func TestOpenChat_EmptySeedFetches(t *testing.T) {
	src := newFakeSource()
	fetch := &fakeFetcher{pages: map[int64][]*model.Message{
		0: {msg(5, 1, time.Now())},
	}}
	m := newTestManager(src, fetch)

	w := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)
	if got := m.Window(w.WindowID); len(got.Messages) != 1 || got.Messages[0].ID != 5 {
		t.Errorf("fetched messages = %v, want id 5", got.Messages)
	}
	if len(fetch.calls) != 1 || fetch.calls[0] != 0 {
		t.Errorf("fetch calls = %v, want one latest-page fetch", fetch.calls)
	}
}

// Opening a conversation that already has a panel must surface that panel,
// never create a second one.
func TestOpenChat_Idempotent(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})

	first := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)
	m.ToggleChat(first.WindowID) // collapse it
	second := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)

	if first.WindowID != second.WindowID {
		t.Error("reopening created a duplicate panel")
	}
	if len(m.Windows()) != 1 {
		t.Fatalf("open panels = %d, want 1", len(m.Windows()))
	}
	if second.Collapsed {
		t.Error("reopening did not uncollapse the existing panel")
	}
}

func TestCloseChat_PositionsStayContiguous(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})

	a := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)
	b := m.OpenChat(context.Background(), conv(2, 20, "Ben"), false)
	c := m.OpenChat(context.Background(), conv(3, 30, "Cy"), false)
	if a.Position != 0 || b.Position != 1 || c.Position != 2 {
		t.Fatalf("initial positions = %d %d %d", a.Position, b.Position, c.Position)
	}

	m.CloseChat(b.WindowID)
	windows := m.Windows()
	if len(windows) != 2 {
		t.Fatalf("open panels = %d, want 2", len(windows))
	}
	for i, w := range windows {
		if w.Position != i {
			t.Errorf("windows[%d].Position = %d, want %d", i, w.Position, i)
		}
	}
	if windows[0].Conversation.ID != 1 || windows[1].Conversation.ID != 3 {
		t.Errorf("relative order changed after close")
	}
}

func TestOpenChat_EvictsOldestAtCap(t *testing.T) {
	src := newFakeSource()
	m := NewManager(src, &fakeFetcher{}, 25, 2, false)
	m.Attach()

	m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)
	m.OpenChat(context.Background(), conv(2, 20, "Ben"), false)
	m.OpenChat(context.Background(), conv(3, 30, "Cy"), false)

	windows := m.Windows()
	if len(windows) != 2 {
		t.Fatalf("open panels = %d, want 2", len(windows))
	}
	if m.IsChatOpen(1) {
		t.Error("oldest panel was not evicted")
	}
	if !m.IsChatOpen(2) || !m.IsChatOpen(3) {
		t.Error("newer panels were evicted")
	}
}

// =============================================================================
// SENDING
// =============================================================================

func TestSendMessageToChat_DelegatesWithoutMutation(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	w := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)

	if err := m.SendMessageToChat(context.Background(), w.WindowID, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(src.sentText) != 1 || src.sentText[0] != "hello" || src.sentConv[0] != 1 {
		t.Errorf("delegated send = %v to %v", src.sentText, src.sentConv)
	}
	// No local echo: the panel list is untouched until the live push.
	if got := m.Window(w.WindowID); len(got.Messages) != 0 {
		t.Errorf("panel messages after send = %v, want empty", got.Messages)
	}

	if err := m.SendMessageToChat(context.Background(), "nope", "hello"); err != ErrUnknownWindow {
		t.Errorf("unknown panel error = %v, want ErrUnknownWindow", err)
	}
}

func TestSendFileToChat_Delegates(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	w := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)

	if err := m.SendFileToChat(context.Background(), w.WindowID, "plan.pdf", "application/pdf", []byte("x")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(src.sentFile) != 1 || src.sentFile[0] != "plan.pdf" {
		t.Errorf("delegated file send = %v", src.sentFile)
	}
}

// =============================================================================
// PAGINATION
// =============================================================================

func TestLoadMoreMessagesForChat_PrependsAndGuardsBoundary(t *testing.T) {
	base := time.Now()
	src := newFakeSource()
	src.messages[1] = []*model.Message{msg(5, 1, base.Add(-time.Minute)), msg(6, 1, base)}
	fetch := &fakeFetcher{pages: map[int64][]*model.Message{
		5: {msg(3, 1, base.Add(-3 * time.Minute)), msg(4, 1, base.Add(-2 * time.Minute))},
		// Cursor 3 has no page: history exhausted.
	}}
	m := newTestManager(src, fetch)
	w := m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)

	if err := m.LoadMoreMessagesForChat(context.Background(), w.WindowID); err != nil {
		t.Fatalf("load more failed: %v", err)
	}
	got := m.Window(w.WindowID).Messages
	want := []int64{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("messages = %d entries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("messages[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}

	// An empty page records the boundary; the list is untouched.
	if err := m.LoadMoreMessagesForChat(context.Background(), w.WindowID); err != nil {
		t.Fatalf("boundary load failed: %v", err)
	}
	if got := m.Window(w.WindowID).Messages; len(got) != 4 {
		t.Errorf("empty page changed the list: %d entries", len(got))
	}

	// The same boundary cursor is never asked again.
	calls := len(fetch.calls)
	if err := m.LoadMoreMessagesForChat(context.Background(), w.WindowID); err != nil {
		t.Fatalf("guarded load failed: %v", err)
	}
	if len(fetch.calls) != calls {
		t.Errorf("boundary cursor was re-fetched: calls = %v", fetch.calls)
	}
}

func TestLoadMoreMessagesForChat_EmptyPanelNoop(t *testing.T) {
	src := newFakeSource()
	fetch := &fakeFetcher{}
	m := NewManager(src, fetch, 25, 0, false)
	m.Attach()

	m.mu.Lock()
	w := &Window{WindowID: "w1", Conversation: conv(1, 10, "Ann")}
	m.windows = append(m.windows, w)
	m.mu.Unlock()

	if err := m.LoadMoreMessagesForChat(context.Background(), "w1"); err != nil {
		t.Fatalf("load more failed: %v", err)
	}
	if len(fetch.calls) != 0 {
		t.Errorf("fetch ran with no cursor: calls = %v", fetch.calls)
	}
}

// =============================================================================
// LIVE ROUTING
// =============================================================================

// A pushed message for an open panel appends exactly once, even when the
// same push is delivered twice, and expands a collapsed panel.
func TestHandleNewMessage_AppendsOnceAndExpands(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	c := conv(1, 10, "Ann")
	w := m.OpenChat(context.Background(), c, false)
	m.ToggleChat(w.WindowID)

	pushed := msg(7, 1, time.Now())
	src.push(pushed, c)
	src.push(pushed, c)

	got := m.Window(w.WindowID)
	if len(got.Messages) != 1 || got.Messages[0].ID != 7 {
		t.Errorf("panel messages = %v, want single message 7", got.Messages)
	}
	if got.Collapsed {
		t.Error("collapsed panel did not expand on a new message")
	}
}

// With no panel open, a message auto-opens one; while the full chat page
// is active it must not.
func TestHandleNewMessage_AutoOpenPolicy(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	c := conv(1, 10, "Ann")

	m.SetChatViewActive(true)
	src.push(msg(1, 1, time.Now()), c)
	if m.IsChatOpen(1) {
		t.Fatal("panel auto-opened while the chat page was active")
	}

	m.SetChatViewActive(false)
	src.push(msg(2, 1, time.Now()), c)
	if !m.IsChatOpen(1) {
		t.Fatal("panel did not auto-open")
	}
	// The auto-opened panel seeds from store state, which already holds
	// both pushed messages.
	w := m.Windows()[0]
	if len(w.Messages) != 2 {
		t.Errorf("auto-opened panel messages = %d, want 2", len(w.Messages))
	}
}

func TestHandleNewMessage_AutoOpenCollapsed(t *testing.T) {
	src := newFakeSource()
	m := NewManager(src, &fakeFetcher{}, 25, 0, true)
	m.Attach()

	src.push(msg(1, 1, time.Now()), conv(1, 10, "Ann"))
	w := m.Windows()[0]
	if !w.Collapsed {
		t.Error("auto-opened panel should start collapsed")
	}
}

func TestHandleNewMessage_UnknownThreadIgnored(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})

	src.push(msg(1, 42, time.Now()), nil)
	if len(m.Windows()) != 0 {
		t.Error("panel auto-opened for a thread missing from the roster")
	}
}

// =============================================================================
// SNAPSHOT ISOLATION
// =============================================================================

// Windows hands out copies: a snapshot taken before a live push keeps its
// contents, and mutating a snapshot never reaches the managed panel.
func TestWindows_SnapshotIsolation(t *testing.T) {
	src := newFakeSource()
	src.messages[1] = []*model.Message{msg(1, 1, time.Now())}
	m := newTestManager(src, &fakeFetcher{})
	c := conv(1, 10, "Ann")
	m.OpenChat(context.Background(), c, false)

	before := m.Windows()[0]
	src.push(msg(2, 1, time.Now()), c)

	if len(before.Messages) != 1 {
		t.Errorf("earlier snapshot grew to %d messages after a push", len(before.Messages))
	}
	after := m.Windows()[0]
	if len(after.Messages) != 2 {
		t.Fatalf("fresh snapshot = %d messages, want 2", len(after.Messages))
	}

	after.Collapsed = true
	after.Conversation.User.Online = true
	fresh := m.Windows()[0]
	if fresh.Collapsed || fresh.Conversation.User.Online {
		t.Error("snapshot mutation reached the managed panel")
	}
}

// Rendering snapshots while live pushes mutate the panels must be safe;
// the race detector patrols this test.
func TestWindows_ConcurrentPushAndRead(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	c := conv(1, 10, "Ann")
	m.OpenChat(context.Background(), c, false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(1); i <= 200; i++ {
			src.push(msg(i, 1, time.Now()), c)
		}
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		for _, w := range m.Windows() {
			_ = w.Collapsed
			_ = w.Conversation.User.DisplayName()
			for _, mm := range w.Messages {
				_ = mm.FromAdmin()
			}
		}
	}
	if w := m.Windows()[0]; len(w.Messages) != 200 {
		t.Errorf("final snapshot = %d messages, want 200", len(w.Messages))
	}
}

func TestMirrorRoster_RefreshesPresence(t *testing.T) {
	src := newFakeSource()
	m := newTestManager(src, &fakeFetcher{})
	m.OpenChat(context.Background(), conv(1, 10, "Ann"), false)

	online := conv(1, 10, "Ann")
	online.User.Online = true
	src.mu.Lock()
	src.roster = []*model.Conversation{online}
	src.mu.Unlock()
	for _, fn := range src.rosterFns {
		fn()
	}

	w := m.Windows()[0]
	if !w.Conversation.User.Online {
		t.Error("panel did not mirror the roster presence change")
	}
	// The mirror is a clone: flipping the roster copy later must not reach
	// through to the panel.
	online.User.Online = false
	if !w.Conversation.User.Online {
		t.Error("panel shares the roster's conversation pointer")
	}
}
