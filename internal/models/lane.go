package models

import "time"

type Lane struct {
	SyncedRecord `gorm:"embedded"`

	Title           string     `gorm:"column:title"`
	BoardID         int64      `gorm:"column:board_id;index"`
	SortOrder       *float64   `gorm:"column:sort_order"`
	Archived        bool       `gorm:"column:archived"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Lane) TableName() string {
	return "kaiten.lanes"
}
