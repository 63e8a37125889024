package models

import (
	"time"

	"gorm.io/datatypes"
)

type PropertyDefinition struct {
	SyncedRecord `gorm:"embedded"`

	Name            string         `gorm:"column:name"`
	FieldType       *string        `gorm:"column:field_type"`
	SelectOptions   datatypes.JSON `gorm:"column:select_options;type:jsonb"`
	KaitenCreatedAt *time.Time     `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time     `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (PropertyDefinition) TableName() string {
	return "kaiten.property_definitions"
}
