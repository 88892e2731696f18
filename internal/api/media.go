// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chirp-social/chirp/internal/models"
)

// mediaUpload is a validated in-memory attachment, ready to hand to
// the blob store.
type mediaUpload struct {
	data        []byte
	contentType string
	ext         string
	kind        string // models.MediaKindImage or models.MediaKindVideo
}

// extByType maps whitelisted MIME types to a canonical file extension,
// used when the uploaded filename has none.
var extByType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

// readMediaFile validates and buffers one uploaded file. Size and MIME
// type are checked before any byte reaches the blob store; the sniffed
// content type must agree with the whitelist, the declared header is
// not trusted on its own.
func (h *Handler) readMediaFile(file multipart.File, header *multipart.FileHeader) (*mediaUpload, error) {
	maxSize := h.config.Upload.MaxFileSize
	if header.Size > maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}

	// Read one byte past the limit so an understated header.Size still
	// cannot smuggle an oversized body through.
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file")
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	contentType := h.resolveContentType(data, header)
	if contentType == "" {
		return nil, fmt.Errorf("unsupported media type")
	}

	kind := models.MediaKindImage
	if strings.HasPrefix(contentType, "video/") {
		kind = models.MediaKindVideo
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extByType[contentType]
	}

	return &mediaUpload{
		data:        data,
		contentType: contentType,
		ext:         ext,
		kind:        kind,
	}, nil
}

// resolveContentType returns the whitelisted MIME type of the upload,
// or empty when the file is not allowed. Sniffing covers the image
// types; mp4/quicktime sniff as application/octet-stream, so for those
// the declared type is accepted when the whitelist contains it.
func (h *Handler) resolveContentType(data []byte, header *multipart.FileHeader) string {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(header.Header.Get("Content-Type"), ";")[0]))
	sniffed := http.DetectContentType(data)

	if h.typeAllowed(sniffed) {
		return sniffed
	}
	if h.typeAllowed(declared) && strings.HasPrefix(declared, "video/") {
		return declared
	}
	return ""
}

func (h *Handler) typeAllowed(contentType string) bool {
	for _, allowed := range h.config.Upload.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
