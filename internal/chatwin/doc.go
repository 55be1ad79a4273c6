// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatwin manages the floating chat panels that overlay every
// screen of the console. Each panel holds an independent projection of one
// conversation's state, reconciled one-way from the message store: the
// store is authoritative, panels copy. Panels open explicitly from the
// roster or automatically when a message arrives for a thread with no open
// panel, unless the full chat page is active.
package chatwin
