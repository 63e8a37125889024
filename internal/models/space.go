package models

import "time"

type Space struct {
	SyncedRecord `gorm:"embedded"`

	Title           string     `gorm:"column:title"`
	CompanyID       *int64     `gorm:"column:company_id"`
	OwnerUserID     *int64     `gorm:"column:owner_user_id"`
	Archived        bool       `gorm:"column:archived"`
	SortOrder       *float64   `gorm:"column:sort_order"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Space) TableName() string {
	return "kaiten.spaces"
}
