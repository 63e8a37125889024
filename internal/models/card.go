package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Card struct {
	SyncedRecord `gorm:"embedded"`

	Title       string  `gorm:"column:title"`
	Description *string `gorm:"column:description"`

	SpaceID   *int64 `gorm:"column:space_id;index"`
	BoardID   int64  `gorm:"column:board_id;index"`
	ColumnID  int64  `gorm:"column:column_id;index"`
	LaneID    *int64 `gorm:"column:lane_id"`
	TypeID    *int64 `gorm:"column:type_id"`
	OwnerID   *int64 `gorm:"column:owner_id;index"`
	CreatorID *int64 `gorm:"column:creator_id"`

	State    *int64 `gorm:"column:state"`
	Archived bool   `gorm:"column:archived;index"`
	Blocked  bool   `gorm:"column:blocked"`

	SizeText         *string `gorm:"column:size_text"`
	EstimateWorkload int64   `gorm:"column:estimate_workload"`
	TimeSpentSum     int64   `gorm:"column:time_spent_sum"`
	TimeBlockedSum   int64   `gorm:"column:time_blocked_sum"`

	DueDate     *time.Time `gorm:"column:due_date"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	Properties  datatypes.JSONMap `gorm:"column:properties;type:jsonb"`
	TagsCache   datatypes.JSON    `gorm:"column:tags_cache;type:jsonb"`
	ParentsIDs  pq.Int64Array     `gorm:"column:parents_ids;type:bigint[]"`
	ChildrenIDs pq.Int64Array     `gorm:"column:children_ids;type:bigint[]"`
	MembersIDs  pq.Int64Array     `gorm:"column:members_ids;type:bigint[]"`

	KaitenCreatedAt *time.Time `gorm:"column:kaiten_created_at"`
	KaitenUpdatedAt *time.Time `gorm:"column:kaiten_updated_at"`
}

// TableName specifies the table name for GORM
func (Card) TableName() string {
	return "kaiten.cards"
}
