package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/models"
	"github.com/avetrov/kaiten-mirror/internal/sync"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Start appends a sync log row in the started state and returns its id.
func (r *SyncLogRepository) Start(ctx context.Context, entityType string, syncType models.SyncType) (string, error) {
	row := models.SyncLog{
		ID:         uuid.NewString(),
		EntityType: entityType,
		SyncType:   syncType,
		Status:     models.SyncLogStarted,
		StartedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to create sync log: %w", err)
	}
	return row.ID, nil
}

// Complete marks a started log row as completed and records the counts.
func (r *SyncLogRepository) Complete(ctx context.Context, logID string, stats sync.Stats, durationMS int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.SyncLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":            models.SyncLogCompleted,
			"records_processed": stats.RecordsProcessed,
			"records_created":   stats.RecordsCreated,
			"records_updated":   stats.RecordsUpdated,
			"records_skipped":   stats.RecordsSkipped,
			"completed_at":      &now,
			"duration_ms":       durationMS,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete sync log %s: %w", logID, result.Error)
	}
	return nil
}

// Fail marks a started log row as failed and records the error.
func (r *SyncLogRepository) Fail(ctx context.Context, logID string, errorMessage string, durationMS int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.SyncLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":        models.SyncLogFailed,
			"error_message": errorMessage,
			"completed_at":  &now,
			"duration_ms":   durationMS,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark sync log %s failed: %w", logID, result.Error)
	}
	return nil
}

// RecordWebhook appends a finished log row for a single webhook delivery.
// Webhook rows skip the started state: the whole delivery is one write.
func (r *SyncLogRepository) RecordWebhook(ctx context.Context, entityType, event string, recordID int64, durationMS int64, webhookErr error) error {
	now := time.Now().UTC()
	row := models.SyncLog{
		ID:               uuid.NewString(),
		EntityType:       entityType,
		SyncType:         models.SyncTypeWebhook,
		Status:           models.SyncLogCompleted,
		RecordsProcessed: 1,
		RecordsUpdated:   1,
		StartedAt:        now,
		CompletedAt:      &now,
		DurationMS:       durationMS,
		Metadata: datatypes.JSONMap{
			"event":     event,
			"record_id": recordID,
		},
	}
	if webhookErr != nil {
		msg := webhookErr.Error()
		row.Status = models.SyncLogFailed
		row.ErrorMessage = &msg
		row.RecordsUpdated = 0
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record webhook log: %w", err)
	}
	return nil
}

// Recent returns the most recent log rows, newest first.
func (r *SyncLogRepository) Recent(ctx context.Context, limit int) ([]models.SyncLog, error) {
	var rows []models.SyncLog
	result := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recent sync logs: %w", result.Error)
	}
	return rows, nil
}
