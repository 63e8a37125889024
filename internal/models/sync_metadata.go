package models

import "time"

type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusRunning SyncStatus = "running"
	SyncStatusError   SyncStatus = "error"
)

// SyncMetadata is the single bookkeeping row per entity type. It is upserted
// at the end of every sync attempt and never deleted.
type SyncMetadata struct {
	EntityType            string     `gorm:"column:entity_type;primaryKey"`
	Status                SyncStatus `gorm:"column:status"`
	LastFullSyncAt        *time.Time `gorm:"column:last_full_sync_at"`
	LastIncrementalSyncAt *time.Time `gorm:"column:last_incremental_sync_at"`
	TotalRecords          int64      `gorm:"column:total_records"`
	ErrorMessage          *string    `gorm:"column:error_message"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (SyncMetadata) TableName() string {
	return "sync_metadata"
}
