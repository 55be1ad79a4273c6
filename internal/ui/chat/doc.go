// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk
// console: the conversation roster on the left, the selected thread on the
// right, the floating panel strip along the bottom, and the status bar.
//
// The model is a thin projection layer. All chat state lives in the store
// and panel manager; their change callbacks are forwarded into the update
// loop as messages, so the view only ever renders snapshots.
package chat
