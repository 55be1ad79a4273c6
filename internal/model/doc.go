// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages
// exchanged with the coaching-platform admin API, plus the merge helpers the
// stores use to combine REST pages with live socket events.
package model
