package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncedRecord holds the columns every mirrored row carries: the source
// system's primary id, the optional external uid, sync bookkeeping and the
// raw payload kept for audit/reprocessing.
type SyncedRecord struct {
	ID          int64             `gorm:"column:id;primaryKey"`
	UID         *string           `gorm:"column:uid"`
	SyncedAt    time.Time         `gorm:"column:synced_at"`
	PayloadHash string            `gorm:"column:payload_hash"`
	RawPayload  datatypes.JSONMap `gorm:"column:raw_payload;type:jsonb"`
}
