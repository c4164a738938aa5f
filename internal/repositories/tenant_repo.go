package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateSubscriptionState(ctx context.Context, tenant *models.Tenant) error
	ListExpiredTrials(ctx context.Context) ([]*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepository(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, slug, subscription_status, is_trial_period, trial_ends_at, status, created_at, updated_at`

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, subscription_status, is_trial_period, trial_ends_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Slug, tenant.SubscriptionStatus, tenant.IsTrialPeriod, tenant.TrialEndsAt, tenant.Status)
	return err
}

func (r *tenantRepo) scan(row interface{ Scan(dest ...any) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.SubscriptionStatus, &tenant.IsTrialPeriod, &tenant.TrialEndsAt, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	return r.scan(r.db.QueryRow(ctx, query, slug))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, slug = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.Slug, tenant.Status, tenant.ID)
	return err
}

// UpdateSubscriptionState writes only the subscription-facing fields. The
// caller is expected to update the tenant_subscriptions row in the same
// transaction so the two stay in agreement.
func (r *tenantRepo) UpdateSubscriptionState(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET subscription_status = $1, is_trial_period = $2, trial_ends_at = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, tenant.SubscriptionStatus, tenant.IsTrialPeriod, tenant.TrialEndsAt, tenant.ID)
	return err
}

func (r *tenantRepo) ListExpiredTrials(ctx context.Context) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE subscription_status = $1 AND trial_ends_at < NOW()
	`
	rows, err := r.db.Query(ctx, query, models.SubscriptionStatusTrialing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
