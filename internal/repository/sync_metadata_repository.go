package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avetrov/kaiten-mirror/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncMetadataRepository struct {
	db *gorm.DB
}

func NewSyncMetadataRepository(db *gorm.DB) *SyncMetadataRepository {
	return &SyncMetadataRepository{db: db}
}

// Get loads the bookkeeping row for an entity type. Returns nil without an
// error when the entity has never been synced.
func (r *SyncMetadataRepository) Get(ctx context.Context, entityType string) (*models.SyncMetadata, error) {
	var meta models.SyncMetadata
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync metadata for %s: %w", entityType, err)
	}
	return &meta, nil
}

// Upsert writes the bookkeeping row, keyed by entity_type.
func (r *SyncMetadataRepository) Upsert(ctx context.Context, meta *models.SyncMetadata) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}},
			UpdateAll: true,
		}).
		Create(meta)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert sync metadata for %s: %w", meta.EntityType, result.Error)
	}
	return nil
}

// List returns all bookkeeping rows ordered by entity type.
func (r *SyncMetadataRepository) List(ctx context.Context) ([]models.SyncMetadata, error) {
	var rows []models.SyncMetadata
	result := r.db.WithContext(ctx).
		Order("entity_type ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sync metadata: %w", result.Error)
	}
	return rows, nil
}
