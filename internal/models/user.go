package models

import "time"

type User struct {
	SyncedRecord `gorm:"embedded"`

	FullName        *string    `gorm:"column:full_name"`
	Email           *string    `gorm:"column:email;index"`
	Username        *string    `gorm:"column:username"`
	Timezone        *string    `gorm:"column:timezone"`
	Role            *int64     `gorm:"column:role"`
	IsAdmin         bool       `gorm:"column:is_admin"`
	TakeLicence     *bool      `gorm:"column:take_licence"`
	AppsPermissions *int64     `gorm:"column:apps_permissions"`
	Locked          *bool      `gorm:"column:locked"`
	LastRequestDate *time.Time `gorm:"column:last_request_date"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "kaiten.users"
}
