package feed

import (
	"bytes"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamspace/apperrors"
)

// The client validates uploads before touching the network. A client
// pointed at an unroutable address must still fail with a validation
// error, not a network one.
func TestUploadValidationRunsBeforeNetwork(t *testing.T) {
	c := NewClient("http://invalid.localdomain:1", "token")

	oversized := make([]byte, 15<<20)
	_, err := c.Upload(5, "big.png", "image/png", oversized)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.Upload(5, "tool.exe", "application/x-msdownload", []byte{1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.Replace(9, "tool.exe", "application/x-msdownload", []byte{1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSendTextRejectsEmptyContentLocally(t *testing.T) {
	c := NewClient("http://invalid.localdomain:1", "token")

	_, err := c.SendText(5, "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.EditText(5, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestErrorFromResponseMapping(t *testing.T) {
	tests := []struct {
		status int
		code   apperrors.Code
	}{
		{400, apperrors.CodeValidation},
		{401, apperrors.CodeAuthorization},
		{403, apperrors.CodeAuthorization},
		{404, apperrors.CodeNotFound},
		{409, apperrors.CodeConflict},
		{500, apperrors.CodeInternal},
	}
	for _, tt := range tests {
		err := errorFromResponse(tt.status, []byte(`{"error":"boom"}`))
		assert.Equal(t, tt.code, apperrors.CodeOf(err), "status %d", tt.status)
	}

	// Missing body still yields a usable message.
	err := errorFromResponse(404, nil)
	assert.Contains(t, err.Error(), "404")
}

func TestMultipartBodyRoundTrip(t *testing.T) {
	body, boundary, err := multipartBody("notes.pdf", "application/pdf", []byte("content"))
	require.NoError(t, err)

	r := multipart.NewReader(bytes.NewReader(body), boundary)
	part, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "notes.pdf", part.FileName())

	ct, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
}
