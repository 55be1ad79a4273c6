// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the authenticated HTTP client for the
// coaching-platform admin API: conversation listing, cursor-paged message
// history, sends, and the signed-URL file storage flow.
package api
