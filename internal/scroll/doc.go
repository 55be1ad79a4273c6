// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll implements viewport anchor math for backward pagination:
// record which message the viewport is framing before older history is
// prepended, then compute the scroll offset that restores the exact framing
// afterwards. Pure functions over line offsets, testable without a
// rendering surface.
package scroll
