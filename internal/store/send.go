// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the authoritative client-side chat state.
//
// This file implements the outbound send pipeline. Sends are fire-and-wait:
// no optimistic local echo is ever written. The server confirms a send by
// pushing the stored message back over the event stream, which is the only
// path that materializes it in history.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// Send pipeline errors.
var (
	// ErrEmptyMessage rejects a text send whose content is whitespace-only.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrUnknownRecipient means no user id could be resolved: no override
	// was supplied and the conversation is not in the roster.
	ErrUnknownRecipient = errors.New("cannot resolve message recipient")
)

// resolveUserID determines the recipient. An explicit override wins (the
// new-conversation flow, where no thread exists yet); otherwise the
// conversation's user is looked up in the roster.
func (s *MessageStore) resolveUserID(conversationID *int64, userIDOverride *int64) (int64, error) {
	if userIDOverride != nil {
		return *userIDOverride, nil
	}
	if conversationID == nil {
		return 0, ErrUnknownRecipient
	}
	s.mu.Lock()
	conv := model.FindConversation(s.roster, *conversationID)
	s.mu.Unlock()
	if conv == nil {
		return 0, ErrUnknownRecipient
	}
	return conv.UserID, nil
}

// SendTextMessage validates and sends a text message. The local history is
// not touched: the confirmed message arrives via the live event.
func (s *MessageStore) SendTextMessage(ctx context.Context, conversationID *int64, content string, userIDOverride *int64) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	userID, err := s.resolveUserID(conversationID, userIDOverride)
	if err != nil {
		return err
	}
	if err := s.api.SendText(ctx, userID, content); err != nil {
		return fmt.Errorf("text send failed: %w", err)
	}
	return nil
}

// SendFileMessage uploads the file and sends a message referencing it.
// If any step after the file record is created fails, the record is
// deleted so the storage service holds no orphan, and the ORIGINAL error
// is returned; a failure of the compensating delete itself is only logged.
func (s *MessageStore) SendFileMessage(ctx context.Context, conversationID *int64, fileName, mimeType string, data []byte, userIDOverride *int64) error {
	userID, err := s.resolveUserID(conversationID, userIDOverride)
	if err != nil {
		return err
	}

	created, err := s.api.CreateFile(ctx, fileName, mimeType, int64(len(data)))
	if err != nil {
		return fmt.Errorf("file create failed: %w", err)
	}

	if err := s.api.UploadBytes(ctx, created.UploadURL, mimeType, data); err != nil {
		s.compensateFile(ctx, created.File.ID)
		return fmt.Errorf("file upload failed: %w", err)
	}

	if err := s.api.SendFile(ctx, userID, created.File.ID); err != nil {
		s.compensateFile(ctx, created.File.ID)
		return fmt.Errorf("file send failed: %w", err)
	}
	return nil
}

// compensateFile deletes a file record left behind by a failed send.
func (s *MessageStore) compensateFile(ctx context.Context, fileID int64) {
	if err := s.api.DeleteFile(ctx, fileID); err != nil {
		log.Printf("store: compensating delete of file %d failed: %v", fileID, err)
	}
}
