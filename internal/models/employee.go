package models

import "time"

// Employee is the HR-side projection of a synced user. Lives outside the
// kaiten schema; refreshed after users or roles finish syncing.
type Employee struct {
	ID           string    `gorm:"column:id;primaryKey"`
	KaitenUserID int64     `gorm:"column:kaiten_user_id;uniqueIndex"`
	FullName     *string   `gorm:"column:full_name"`
	Email        *string   `gorm:"column:email"`
	RoleID       *int64    `gorm:"column:role_id"`
	RoleName     *string   `gorm:"column:role_name"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Employee) TableName() string {
	return "employees"
}
