package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByKey(ctx context.Context, tenantID uuid.UUID, key string) (*models.Role, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Role, error)
}

type roleRepo struct {
	db DBTX
}

func NewRoleRepository(db DBTX) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, tenant_id, key, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, key) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.TenantID, role.Key, role.Name, role.Description)
	return err
}

func (r *roleRepo) GetByKey(ctx context.Context, tenantID uuid.UUID, key string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, tenant_id, key, name, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND key = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, key).Scan(&role.ID, &role.TenantID, &role.Key, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Role, error) {
	query := `
		SELECT id, tenant_id, key, name, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1
		ORDER BY key
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Key, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
