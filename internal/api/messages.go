// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the authenticated HTTP client for the
// coaching-platform admin API.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// =============================================================================
// CONVERSATION ENDPOINTS
// =============================================================================

// ListConversations fetches one page of the admin conversation roster.
func (c *Client) ListConversations(ctx context.Context, search string, page, pageSize int) ([]*model.Conversation, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var out []*model.Conversation
	if err := c.doJSON(ctx, "GET", "/messages/admin/conversations", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSeen marks a conversation as seen by the admin.
func (c *Client) MarkSeen(ctx context.Context, conversationID int64) error {
	path := fmt.Sprintf("/messages/admin/%d/seen", conversationID)
	return c.doJSON(ctx, "PATCH", path, nil, nil, nil)
}

// ListUsersWithoutConversation fetches candidate recipients that have no
// existing thread yet.
func (c *Client) ListUsersWithoutConversation(ctx context.Context, search string, page, pageSize int) ([]*model.UserSummary, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var out []*model.UserSummary
	if err := c.doJSON(ctx, "GET", "/messages/admin/users-without-conversation", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// MESSAGE ENDPOINTS
// =============================================================================

// ListMessages fetches one page of a user's message history. A non-zero
// lastMessageID acts as an older-than cursor; zero fetches the latest page.
func (c *Client) ListMessages(ctx context.Context, userID, lastMessageID int64, perPage int) ([]*model.Message, error) {
	q := url.Values{}
	if lastMessageID > 0 {
		q.Set("lastMessageId", strconv.FormatInt(lastMessageID, 10))
	}
	q.Set("perPage", strconv.Itoa(perPage))

	var out []*model.Message
	path := fmt.Sprintf("/messages/admin/%d", userID)
	if err := c.doJSON(ctx, "GET", path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// sendRequest is the POST body for both text and file sends.
type sendRequest struct {
	Type    model.MessageType `json:"type"`
	Content string            `json:"content,omitempty"`
	FileID  int64             `json:"fileId,omitempty"`
}

// SendText sends a text message to a user. The response carries no state
// the client relies on; the sent message materializes via the live event.
func (c *Client) SendText(ctx context.Context, userID int64, content string) error {
	path := fmt.Sprintf("/messages/admin/%d", userID)
	return c.doJSON(ctx, "POST", path, nil, sendRequest{Type: model.MessageText, Content: content}, nil)
}

// SendFile sends a previously uploaded file to a user.
func (c *Client) SendFile(ctx context.Context, userID, fileID int64) error {
	path := fmt.Sprintf("/messages/admin/%d", userID)
	return c.doJSON(ctx, "POST", path, nil, sendRequest{Type: model.MessageFile, FileID: fileID}, nil)
}
