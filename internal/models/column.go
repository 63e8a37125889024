package models

import "time"

// Column type values in the source system: 1=queue, 2=in progress, 3=done.
type Column struct {
	SyncedRecord `gorm:"embedded"`

	Title           string     `gorm:"column:title"`
	BoardID         int64      `gorm:"column:board_id;index"`
	ColumnType      *int64     `gorm:"column:column_type"`
	SortOrder       *float64   `gorm:"column:sort_order"`
	WIPLimit        *int64     `gorm:"column:wip_limit"`
	Archived        bool       `gorm:"column:archived"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Column) TableName() string {
	return "kaiten.columns"
}
