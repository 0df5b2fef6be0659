package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamspace/apperrors"
)

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"small pdf", "notes.pdf", "application/pdf", 2 << 20, false},
		{"jpeg image", "photo.jpg", "image/jpeg", 512, false},
		{"webp image", "sticker.webp", "image/webp", 1024, false},
		{"docx", "report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 4096, false},
		{"plain text", "readme.txt", "text/plain", 10, false},
		{"oversized image", "big.png", "image/png", 15 << 20, true},
		{"exactly at limit", "edge.png", "image/png", MaxUploadSize, false},
		{"one byte over", "edge.png", "image/png", MaxUploadSize + 1, true},
		{"executable", "tool.exe", "application/x-msdownload", 100, true},
		{"svg not allowed", "logo.svg", "image/svg+xml", 100, true},
		{"empty file", "empty.pdf", "application/pdf", 0, true},
		{"missing filename", "", "application/pdf", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpload(tt.filename, tt.contentType, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err), "expected a validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", NormalizeContentType("notes.pdf", ""))
	assert.Equal(t, "application/pdf", NormalizeContentType("notes.pdf", "application/octet-stream"))
	assert.Equal(t, "image/png", NormalizeContentType("a.png", "image/png; charset=binary"))
	assert.Equal(t, "image/jpeg", NormalizeContentType("b.txt", "IMAGE/JPEG"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/jpeg"))
	assert.True(t, IsImage("image/webp"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage("image/svg+xml"))
}
