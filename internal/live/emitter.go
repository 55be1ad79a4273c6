// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package live maintains the persistent event-stream connection.
package live

import (
	"encoding/json"
	"sync"
)

// =============================================================================
// EVENT EMITTER
// =============================================================================

// Handler receives the raw payload of one named event.
type Handler func(data json.RawMessage)

// Emitter is a small observer registry with subscribe→unsubscribe-handle
// semantics. Handlers for an event run synchronously in registration order.
// Emit iterates over a snapshot of the subscriber list, so unsubscribing
// during delivery never skips or double-invokes remaining handlers; the
// removal takes effect from the next emit.
type Emitter struct {
	mu     sync.Mutex
	nextID int64
	subs   map[string][]subscriber
}

type subscriber struct {
	id int64
	fn Handler
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[string][]subscriber)}
}

// Subscribe registers fn for the named event and returns an unsubscribe
// function. Calling it more than once is harmless.
func (e *Emitter) Subscribe(event string, fn Handler) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs[event] = append(e.subs[event], subscriber{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		list := e.subs[event]
		for i, sub := range list {
			if sub.id == id {
				e.subs[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers data to every handler registered for event, in
// registration order, on the calling goroutine.
func (e *Emitter) Emit(event string, data json.RawMessage) {
	e.mu.Lock()
	list := e.subs[event]
	snapshot := make([]subscriber, len(list))
	copy(snapshot, list)
	e.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(data)
	}
}

// SubscriberCount returns how many handlers are registered for event.
func (e *Emitter) SubscriberCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[event])
}
