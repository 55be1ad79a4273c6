// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the coachdesk
// TUI: the bottom status bar, the conversation roster list, the floating
// panel strip, and non-blocking toast notifications.
package components
