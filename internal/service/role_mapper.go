package service

import (
	"context"
	"fmt"

	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
	"github.com/google/uuid"
)

// EmployeeStore interface for dependency injection
type EmployeeStore interface {
	Upsert(ctx context.Context, employee *models.Employee) error
	ListUsers(ctx context.Context) ([]models.User, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
}

// RoleMapper projects mirrored users into the employees table, resolving
// role ids against the mirrored roles catalog.
type RoleMapper struct {
	store EmployeeStore
	log   *logger.Logger
}

func NewRoleMapper(store EmployeeStore, log *logger.Logger) *RoleMapper {
	return &RoleMapper{
		store: store,
		log:   log,
	}
}

// Refresh rebuilds the employee projection from the current users and roles
// tables. Existing employee rows are updated in place; users never seen
// before get a fresh row.
func (m *RoleMapper) Refresh(ctx context.Context) error {
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users for role mapping: %w", err)
	}

	roles, err := m.store.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roles for role mapping: %w", err)
	}
	roleNames := make(map[int64]string, len(roles))
	for _, role := range roles {
		roleNames[role.ID] = role.Name
	}

	var mapped int
	for _, user := range users {
		employee := &models.Employee{
			ID:           uuid.NewString(),
			KaitenUserID: user.ID,
			FullName:     user.FullName,
			Email:        user.Email,
			RoleID:       user.Role,
			Active:       user.Locked == nil || !*user.Locked,
		}
		if user.Role != nil {
			if name, ok := roleNames[*user.Role]; ok {
				employee.RoleName = &name
			}
		}
		if err := m.store.Upsert(ctx, employee); err != nil {
			return fmt.Errorf("failed to map user %d: %w", user.ID, err)
		}
		mapped++
	}

	m.log.Info("employee role mapping refreshed", "users", mapped, "roles", len(roles))
	return nil
}
