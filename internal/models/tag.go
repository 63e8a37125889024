package models

import "time"

type Tag struct {
	SyncedRecord `gorm:"embedded"`

	Name            string     `gorm:"column:name"`
	Color           *string    `gorm:"column:color"`
	GroupName       *string    `gorm:"column:group_name"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "kaiten.tags"
}
