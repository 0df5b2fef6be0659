package worker

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"teamspace/models"
	"teamspace/storage"
)

type fakeStore struct {
	deleted []string
}

func (f *fakeStore) Save(ctx context.Context, key string, data []byte, contentType string) (*storage.SaveResult, error) {
	return &storage.SaveResult{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Attachment{}, &models.Message{}))
	return db
}

func seedAttachment(t *testing.T, db *gorm.DB, key string, age time.Duration) models.Attachment {
	t.Helper()

	att := models.Attachment{
		TeamID:     1,
		UploaderID: 2,
		StorageKey: key,
		URL:        "http://localhost/files/" + key,
		FileName:   key,
	}
	require.NoError(t, db.Create(&att).Error)
	require.NoError(t, db.Model(&att).UpdateColumn("created_at", time.Now().Add(-age)).Error)
	return att
}

func TestReclaimsAttachmentsWithoutLiveMessages(t *testing.T) {
	db := openTestDB(t)
	store := &fakeStore{}
	cw := NewCleanupWorker(db, store, log.New(io.Discard, "", 0))

	// Orphaned outright: no message ever referenced it.
	orphan := seedAttachment(t, db, "teams/1/orphan.pdf", 2*time.Hour)

	// Referenced only by a tombstoned message.
	stale := seedAttachment(t, db, "teams/1/stale.png", 2*time.Hour)
	msg := models.Message{TeamID: 1, SenderID: 2, Kind: models.MessageKindImage, Content: "stale.png", AttachmentID: &stale.ID}
	require.NoError(t, db.Create(&msg).Error)
	msg.Tombstone(time.Now())
	msg.AttachmentID = &stale.ID // row keeps the fk; only live references count
	require.NoError(t, db.Save(&msg).Error)

	cw.reclaimOrphans(context.Background())

	assert.ElementsMatch(t, []string{orphan.StorageKey, stale.StorageKey}, store.deleted)

	var count int64
	require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestKeepsReferencedAndRecentAttachments(t *testing.T) {
	db := openTestDB(t)
	store := &fakeStore{}
	cw := NewCleanupWorker(db, store, log.New(io.Discard, "", 0))

	// Referenced by a live message: must survive.
	live := seedAttachment(t, db, "teams/1/live.pdf", 2*time.Hour)
	require.NoError(t, db.Create(&models.Message{
		TeamID:       1,
		SenderID:     2,
		Kind:         models.MessageKindFile,
		Content:      "live.pdf",
		AttachmentID: &live.ID,
	}).Error)

	// Orphaned but inside the grace period: must survive this pass.
	seedAttachment(t, db, "teams/1/fresh.pdf", time.Minute)

	cw.reclaimOrphans(context.Background())

	assert.Empty(t, store.deleted)

	var count int64
	require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
