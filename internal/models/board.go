package models

import "time"

type Board struct {
	SyncedRecord `gorm:"embedded"`

	SpaceID         int64      `gorm:"column:space_id;index"`
	Title           string     `gorm:"column:title"`
	Description     *string    `gorm:"column:description"`
	BoardType       *string    `gorm:"column:board_type"`
	Archived        bool       `gorm:"column:archived"`
	SortOrder       *float64   `gorm:"column:sort_order"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Board) TableName() string {
	return "kaiten.boards"
}
