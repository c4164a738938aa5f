package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type UserRoleRepository interface {
	Create(ctx context.Context, userRole *models.UserRole) error
	GetRoleKeys(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

type userRoleRepo struct {
	db DBTX
}

func NewUserRoleRepository(db DBTX) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Create(ctx context.Context, userRole *models.UserRole) error {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userRole.ID, userRole.UserID, userRole.RoleID)
	return err
}

func (r *userRoleRepo) GetRoleKeys(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	query := `
		SELECT r.key
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND r.tenant_id = $2
	`
	rows, err := r.db.Query(ctx, query, userID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
