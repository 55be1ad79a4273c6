// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the authoritative client-side chat state: the
// conversation roster and per-conversation message history, fed by both
// REST fetches and live socket events. It is the single writable source of
// truth for server-confirmed state; floating windows keep independent
// read-projections reconciled one-way from here.
package store
