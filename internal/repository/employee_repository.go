package repository

import (
	"context"
	"fmt"

	"github.com/avetrov/kaiten-mirror/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Upsert writes an employee row, keyed by the source user id so repeated
// refreshes update in place.
func (r *EmployeeRepository) Upsert(ctx context.Context, employee *models.Employee) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "kaiten_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name", "email", "role_id", "role_name", "active", "updated_at",
			}),
		}).
		Create(employee)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert employee for user %d: %w", employee.KaitenUserID, result.Error)
	}
	return nil
}

// ListUsers returns all mirrored users.
func (r *EmployeeRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	result := r.db.WithContext(ctx).Order("id ASC").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list users: %w", result.Error)
	}
	return users, nil
}

// ListRoles returns all mirrored roles.
func (r *EmployeeRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	result := r.db.WithContext(ctx).Order("id ASC").Find(&roles)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list roles: %w", result.Error)
	}
	return roles, nil
}
