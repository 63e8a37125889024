package models

import (
	"time"

	"gorm.io/datatypes"
)

type SyncType string

const (
	SyncTypeFull        SyncType = "full"
	SyncTypeIncremental SyncType = "incremental"
	SyncTypeWebhook     SyncType = "webhook"
)

type SyncLogStatus string

const (
	SyncLogStarted   SyncLogStatus = "started"
	SyncLogCompleted SyncLogStatus = "completed"
	SyncLogFailed    SyncLogStatus = "failed"
)

// SyncLog is one row per sync attempt. Rows are append-only: created at
// attempt start and updated exactly once at completion.
type SyncLog struct {
	ID               string            `gorm:"column:id;primaryKey"`
	EntityType       string            `gorm:"column:entity_type;index"`
	SyncType         SyncType          `gorm:"column:sync_type"`
	Status           SyncLogStatus     `gorm:"column:status"`
	RecordsProcessed int               `gorm:"column:records_processed"`
	RecordsCreated   int               `gorm:"column:records_created"`
	RecordsUpdated   int               `gorm:"column:records_updated"`
	RecordsSkipped   int               `gorm:"column:records_skipped"`
	ErrorMessage     *string           `gorm:"column:error_message"`
	StartedAt        time.Time         `gorm:"column:started_at;index"`
	CompletedAt      *time.Time        `gorm:"column:completed_at"`
	DurationMS       int64             `gorm:"column:duration_ms"`
	Metadata         datatypes.JSONMap `gorm:"column:metadata;type:jsonb"`
}

// TableName specifies the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}
