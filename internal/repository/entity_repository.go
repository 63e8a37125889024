package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// UpsertBatch writes transformed rows in batches, keyed by id. Re-running
// the same batch rewrites the same rows instead of duplicating them.
func (r *EntityRepository) UpsertBatch(ctx context.Context, entity models.EntityType, rows interface{}, batchSize int) (int, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return 0, fmt.Errorf("upsert batch for %s: expected slice, got %T", entity, rows)
	}
	n := v.Len()
	if n == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(rows, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert %s batch: %w", entity, result.Error)
	}
	return n, nil
}

// UpsertOne writes a single transformed row, keyed by id.
func (r *EntityRepository) UpsertOne(ctx context.Context, entity models.EntityType, row interface{}) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert %s record: %w", entity, result.Error)
	}
	return nil
}

// ArchiveCard flags a mirrored card as archived without rewriting the rest
// of the row. Used when the source reports a deletion; mirrored rows are
// never physically deleted.
func (r *EntityRepository) ArchiveCard(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"archived":  true,
			"synced_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to archive card %d: %w", id, result.Error)
	}
	return nil
}

// Count returns the number of mirrored rows for an entity type.
func (r *EntityRepository) Count(ctx context.Context, entity models.EntityType) (int64, error) {
	model := models.ModelFor(entity)
	if model == nil {
		return 0, fmt.Errorf("unknown entity type: %s", entity)
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", entity, err)
	}
	return count, nil
}
