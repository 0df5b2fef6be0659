package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"teamspace/models"
	"teamspace/storage"
)

// orphanGracePeriod is how long an unreferenced attachment survives
// before the worker reclaims it. Covers in-flight replacements.
const orphanGracePeriod = 1 * time.Hour

type CleanupWorker struct {
	DB     *gorm.DB
	Store  storage.Store
	Logger *log.Logger
}

func NewCleanupWorker(db *gorm.DB, store storage.Store, logger *log.Logger) *CleanupWorker {
	return &CleanupWorker{
		DB:     db,
		Store:  store,
		Logger: logger,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	cw.Logger.Println("Cleanup worker started")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Println("Cleanup worker shutting down...")
			return
		case <-ticker.C:
			cw.reclaimOrphans(ctx)
		}
	}
}

// reclaimOrphans deletes attachments no live message references. An
// attachment goes orphan when its message is tombstoned, when a
// replacement swaps it out, or when an upload never got a message row.
func (cw *CleanupWorker) reclaimOrphans(ctx context.Context) {
	cutoff := time.Now().Add(-orphanGracePeriod)

	var orphans []models.Attachment
	err := cw.DB.
		Where("created_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM messages WHERE messages.attachment_id = attachments.id AND messages.deleted = ?)", false).
		Find(&orphans).Error
	if err != nil {
		cw.Logger.Printf("Error fetching orphaned attachments: %v", err)
		return
	}

	for _, attachment := range orphans {
		if err := cw.reclaim(ctx, attachment); err != nil {
			cw.Logger.Printf("Error reclaiming attachment %d: %v", attachment.ID, err)
		}
	}

	if len(orphans) > 0 {
		cw.Logger.Printf("Reclaimed %d orphaned attachments", len(orphans))
	}
}

func (cw *CleanupWorker) reclaim(ctx context.Context, attachment models.Attachment) error {
	// Blob first: if the delete fails the row stays and we retry on the
	// next tick.
	if err := cw.Store.Delete(ctx, attachment.StorageKey); err != nil {
		return err
	}
	return cw.DB.Unscoped().Delete(&attachment).Error
}
