// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared utilities: trailing-edge debouncing,
// atomic file writes, and string helpers.
package util
