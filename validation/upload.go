// Package validation checks uploads before any storage or network work
// happens. The same rules run in the client SDK and in the API handlers.
package validation

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"teamspace/apperrors"
)

// MaxUploadSize is the ceiling for a single attachment.
const MaxUploadSize = 10 << 20 // 10 MiB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"text/plain": true,
}

// NormalizeContentType resolves the effective MIME type of an upload,
// falling back to the filename extension when the declared type is empty
// or generic.
func NormalizeContentType(filename, contentType string) string {
	ct := strings.TrimSpace(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(ct)
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			return NormalizeContentType("", byExt)
		}
	}
	return ct
}

// IsImage reports whether the content type is an allowed image type.
func IsImage(contentType string) bool {
	return allowedImageTypes[contentType]
}

// CheckUpload validates filename, content type and size against the
// attachment rules. It returns a validation error from apperrors so the
// caller can surface it without a network round trip.
func CheckUpload(filename, contentType string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.Validation("file name is required")
	}
	if size <= 0 {
		return apperrors.Validation("file is empty")
	}
	if size > MaxUploadSize {
		return apperrors.Validation("file exceeds the %d MB limit", MaxUploadSize>>20)
	}
	ct := NormalizeContentType(filename, contentType)
	if !allowedImageTypes[ct] && !allowedDocumentTypes[ct] {
		if ct == "" {
			ct = "unknown"
		}
		return apperrors.Validation(fmt.Sprintf("file type %s is not allowed", ct))
	}
	return nil
}
