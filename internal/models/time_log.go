package models

import "time"

// TimeLog mirrors one time-tracking entry. The stored raw payload is
// slimmed: heavy nested relations are dropped, only their ids survive in
// the dedicated columns.
type TimeLog struct {
	SyncedRecord `gorm:"embedded"`

	CardID           *int64     `gorm:"column:card_id;index"`
	UserID           *int64     `gorm:"column:user_id;index"`
	RoleID           *int64     `gorm:"column:role_id"`
	TimeSpentMinutes int64      `gorm:"column:time_spent_minutes"`
	Date             *string    `gorm:"column:date;type:date;index"`
	Comment          *string    `gorm:"column:comment"`
	KaitenCreatedAt  *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt  *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (TimeLog) TableName() string {
	return "kaiten.time_logs"
}
