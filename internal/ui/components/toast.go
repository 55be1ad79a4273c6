// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the coachdesk TUI.
//
// This file implements non-blocking toasts. Unlike modal error dialogs,
// toasts appear in the bottom-right corner and auto-dismiss, so a failed
// send never traps the coach in a dialog.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose)
	ToastKindError
	// ToastKindSuccess is a success toast (emerald)
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts.
const ErrorToastDuration = 8 * time.Second

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

var (
	toastIDMu sync.Mutex
	toastID   int
)

func nextToastID() int {
	toastIDMu.Lock()
	defer toastIDMu.Unlock()
	toastID++
	return toastID
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindStatus,
		CreatedAt: time.Now(),
		Duration:  DefaultToastDuration,
	}
}

// Expired reports whether the toast has outlived its duration.
func (t Toast) Expired(now time.Time) bool {
	return now.After(t.CreatedAt.Add(t.Duration))
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastExpiredMsg asks the update loop to sweep expired toasts.
type ToastExpiredMsg struct{}

// ToastStack holds the active toasts, newest last.
type ToastStack struct {
	toasts []Toast
	theme  *styles.Theme
}

// NewToastStack creates an empty toast stack.
func NewToastStack(theme *styles.Theme) *ToastStack {
	return &ToastStack{theme: theme}
}

// Push adds a toast and returns the command that triggers its sweep.
func (s *ToastStack) Push(t Toast) tea.Cmd {
	s.toasts = append(s.toasts, t)
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}

// Sweep drops expired toasts.
func (s *ToastStack) Sweep(now time.Time) {
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
}

// Len returns the number of active toasts.
func (s *ToastStack) Len() int {
	return len(s.toasts)
}

// View renders the stack, newest at the bottom.
func (s *ToastStack) View(maxWidth int) string {
	if len(s.toasts) == 0 {
		return ""
	}
	var lines []string
	for _, t := range s.toasts {
		lines = append(lines, s.render(t, maxWidth))
	}
	return strings.Join(lines, "\n")
}

// render draws one toast box.
func (s *ToastStack) render(t Toast, maxWidth int) string {
	var border lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		border = styles.Rose
		icon = "x"
	case ToastKindSuccess:
		border = styles.Emerald
		icon = "+"
	default:
		border = styles.Cyan
		icon = "i"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MaxWidth(maxWidth)

	return box.Render(icon + " " + t.Message)
}
