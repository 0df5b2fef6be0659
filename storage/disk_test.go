package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSaveAndDelete(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "http://localhost:5000/files/")
	key := ObjectKey(7, "notes.pdf")

	res, err := store.Save(context.Background(), key, []byte("hello"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, key, res.Key)
	assert.Equal(t, int64(5), res.Size)
	assert.Equal(t, "http://localhost:5000/files/"+key, res.URL)

	require.NoError(t, store.Delete(context.Background(), key))
	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(context.Background(), key))
}

func TestDiskStoreSaveCreatesNestedDirs(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "http://localhost:5000/files")

	key := ObjectKey(42, "photo.png")
	_, err := store.Save(context.Background(), key, []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(3, "Report.PDF")
	assert.True(t, strings.HasPrefix(key, "teams/3/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	// Keys must be unique per call even for identical inputs.
	assert.NotEqual(t, key, ObjectKey(3, "Report.PDF"))
}
