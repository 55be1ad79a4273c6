// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package live maintains the single persistent event-stream connection to
// the coaching platform and fans out named server-push events to
// subscribers. The connection is an explicitly owned object with
// Connect/Disconnect lifecycle, constructed once at composition time and
// handed down; there is no package-level socket.
package live
