// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package live maintains the persistent event-stream connection.
package live

import (
	"encoding/json"
	"testing"
)

func TestEmitter_OrderAndPayload(t *testing.T) {
	e := NewEmitter()

	var order []string
	e.Subscribe("newMessage", func(data json.RawMessage) {
		order = append(order, "first:"+string(data))
	})
	e.Subscribe("newMessage", func(data json.RawMessage) {
		order = append(order, "second:"+string(data))
	})
	e.Subscribe("other", func(json.RawMessage) {
		order = append(order, "wrong-event")
	})

	e.Emit("newMessage", json.RawMessage(`{"id":1}`))

	if len(order) != 2 {
		t.Fatalf("handler calls = %d, want 2", len(order))
	}
	if order[0] != `first:{"id":1}` || order[1] != `second:{"id":1}` {
		t.Errorf("delivery order = %v", order)
	}
}

func TestEmitter_Unsubscribe(t *testing.T) {
	e := NewEmitter()

	calls := 0
	unsub := e.Subscribe("evt", func(json.RawMessage) { calls++ })

	e.Emit("evt", nil)
	unsub()
	unsub() // calling twice is harmless
	e.Emit("evt", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if e.SubscriberCount("evt") != 0 {
		t.Errorf("SubscriberCount = %d, want 0", e.SubscriberCount("evt"))
	}
}

// Unsubscribing mid-delivery must not skip or double-invoke the remaining
// handlers of the in-flight emit; removal applies from the next emit.
func TestEmitter_UnsubscribeDuringEmit(t *testing.T) {
	e := NewEmitter()

	var calls []string
	var unsubB func()
	e.Subscribe("evt", func(json.RawMessage) {
		calls = append(calls, "a")
		unsubB() // removes b while the snapshot is being walked
	})
	unsubB = e.Subscribe("evt", func(json.RawMessage) {
		calls = append(calls, "b")
	})
	e.Subscribe("evt", func(json.RawMessage) {
		calls = append(calls, "c")
	})

	e.Emit("evt", nil)
	if got := len(calls); got != 3 {
		t.Fatalf("first emit calls = %d (%v), want 3", got, calls)
	}

	calls = nil
	e.Emit("evt", nil)
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "c" {
		t.Errorf("second emit calls = %v, want [a c]", calls)
	}
}
