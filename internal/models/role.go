package models

import "time"

// Role is a time-log role from the source system's user-roles catalog.
type Role struct {
	SyncedRecord `gorm:"embedded"`

	Name            string     `gorm:"column:name"`
	CompanyID       *int64     `gorm:"column:company_id"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Role) TableName() string {
	return "kaiten.roles"
}
