package models

import "time"

type CardType struct {
	SyncedRecord `gorm:"embedded"`

	Name            string     `gorm:"column:name"`
	IconURL         *string    `gorm:"column:icon_url"`
	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (CardType) TableName() string {
	return "kaiten.card_types"
}
