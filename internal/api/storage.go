// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the authenticated HTTP client for the
// coaching-platform admin API.
//
// This file covers the file storage flow: create a file record to obtain a
// one-shot upload URL, PUT the raw bytes there, and delete the record again
// when a post-upload step fails (compensation for orphaned uploads).
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/coachdesk-tui/internal/model"
)

// =============================================================================
// STORAGE ENDPOINTS
// =============================================================================

// CreateFileResponse is the server's answer to a create-file request.
type CreateFileResponse struct {
	UploadURL string        `json:"uploadUrl"`
	File      model.FileRef `json:"file"`
}

// createFileRequest describes the file being registered.
type createFileRequest struct {
	FileName string `json:"fileName"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// CreateFile registers a file with the storage service and returns the
// upload URL plus the file descriptor to reference in a later send.
func (c *Client) CreateFile(ctx context.Context, fileName, mimeType string, size int64) (*CreateFileResponse, error) {
	var out CreateFileResponse
	req := createFileRequest{FileName: fileName, Type: mimeType, Size: size}
	if err := c.doJSON(ctx, "POST", "/storage/create-file", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadBytes PUTs raw file bytes to the upload URL returned by CreateFile.
// The upload URL is pre-signed; no Authorization header is attached.
func (c *Client) UploadBytes(ctx context.Context, uploadURL, mimeType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, "PUT", uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: "upload rejected"}
	}
	return nil
}

// DeleteFile removes an uploaded file. Used as the compensating action when
// a send fails after its upload succeeded.
func (c *Client) DeleteFile(ctx context.Context, fileID int64) error {
	path := fmt.Sprintf("/storage/file/%d", fileID)
	return c.doJSON(ctx, "DELETE", path, nil, nil, nil)
}
