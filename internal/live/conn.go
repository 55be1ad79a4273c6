// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package live maintains the persistent event-stream connection.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Named events pushed by the server.
const (
	EventNewMessage          = "newMessage"
	EventConversationUpdated = "conversationUpdated"
	EventUserConnected       = "user_connected"
	EventUserDisconnected    = "user_disconnected"
)

// handshakeTimeout bounds the websocket dial.
const handshakeTimeout = 10 * time.Second

// ErrAlreadyConnected indicates Connect was called on a live connection.
var ErrAlreadyConnected = errors.New("event stream already connected")

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State describes the connection lifecycle for status display.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the display string for the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "offline"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// envelope is the wire frame for one named event.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// =============================================================================
// CONNECTION
// =============================================================================

// CredentialFunc supplies the credential attached to each (re)connect
// handshake. Evaluated at dial time, not captured once, so a refreshed
// token is honored on reconnect.
type CredentialFunc func() string

// Conn is the single shared event-stream connection for a session.
type Conn struct {
	url        string
	credential CredentialFunc
	emitter    *Emitter
	dialer     *websocket.Dialer

	// limiter paces reconnect attempts after drops.
	limiter *rate.Limiter

	mu      sync.Mutex
	ws      *websocket.Conn
	state   State
	onState func(State)
	done    chan struct{}
}

// NewConn creates a connection object for the given socket URL. No network
// activity happens until Connect.
func NewConn(socketURL string, credential CredentialFunc) *Conn {
	return &Conn{
		url:        socketURL,
		credential: credential,
		emitter:    NewEmitter(),
		dialer:     &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 3),
		state:      StateDisconnected,
	}
}

// Subscribe registers a handler for a named event and returns its
// unsubscribe function. Components subscribe on mount and must call the
// returned function on unmount so remounts never double-register.
func (c *Conn) Subscribe(event string, fn Handler) func() {
	return c.emitter.Subscribe(event, fn)
}

// OnStateChange registers a single callback observing lifecycle changes.
func (c *Conn) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState transitions the lifecycle state and notifies the observer.
func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Connect dials the event stream and starts the read loop. The credential
// callback is evaluated now and again on every reconnect.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.ws != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.setState(StateConnecting)
	ws, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.mu.Lock()
	c.ws = ws
	done := c.done
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(ws, done)
	return nil
}

// dial performs one handshake with a fresh credential.
func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.credential != nil {
		header.Set("Authorization", "Bearer "+c.credential())
	}
	ws, _, err := c.dialer.DialContext(ctx, c.url, header)
	return ws, err
}

// Disconnect closes the connection and stops reconnecting.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	ws := c.ws
	done := c.done
	c.ws = nil
	c.done = nil
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	c.setState(StateDisconnected)
	if ws != nil {
		return ws.Close()
	}
	return nil
}

// readLoop decodes envelopes off ws and dispatches them until the
// connection drops or Disconnect is called, then hands off to reconnect.
func (c *Conn) readLoop(ws *websocket.Conn, done chan struct{}) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return // deliberate disconnect
			default:
			}
			log.Printf("live: read failed, reconnecting: %v", err)
			c.reconnect(done)
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("live: dropping malformed event frame: %v", err)
			continue
		}
		c.emitter.Emit(env.Event, env.Data)
	}
}

// reconnect redials with rate-limited retries until it succeeds or the
// connection is disconnected. Each attempt re-evaluates the credential.
func (c *Conn) reconnect(done chan struct{}) {
	c.setState(StateReconnecting)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.setState(StateDisconnected)
			return
		}

		ws, err := c.dial(ctx)
		if err != nil {
			log.Printf("live: reconnect attempt failed: %v", err)
			continue
		}

		c.mu.Lock()
		stale := false
		select {
		case <-done:
			stale = true
		default:
			c.ws = ws
		}
		c.mu.Unlock()

		if stale {
			ws.Close()
			return
		}
		c.setState(StateConnected)
		go c.readLoop(ws, done)
		return
	}
}
