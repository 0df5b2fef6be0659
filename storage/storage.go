// Package storage persists attachment blobs. Metadata lives in the
// database; backends only deal in raw bytes addressed by object keys.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveResult contains the outcome of a successful save.
type SaveResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store is the backend interface for attachment blobs.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (*SaveResult, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key for a team upload while keeping
// the original extension so content types survive a round trip.
func ObjectKey(teamID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("teams/%d/%s%s", teamID, uuid.New().String(), ext)
}
