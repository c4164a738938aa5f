package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.TenantSubscription) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantSubscription, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.TenantSubscription, error)
	Update(ctx context.Context, sub *models.TenantSubscription) error
}

type subscriptionRepo struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, tenant_id, plan_key, billing_interval, status, current_period_end, provider_subscription_id, created_at, updated_at`

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.TenantSubscription) error {
	query := `
		INSERT INTO tenant_subscriptions (id, tenant_id, plan_key, billing_interval, status, current_period_end, provider_subscription_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, sub.ID, sub.TenantID, sub.PlanKey, sub.BillingInterval, sub.Status, sub.CurrentPeriodEnd, sub.ProviderSubscriptionID)
	return err
}

func (r *subscriptionRepo) scan(row interface{ Scan(dest ...any) error }) (*models.TenantSubscription, error) {
	sub := &models.TenantSubscription{}
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.PlanKey, &sub.BillingInterval, &sub.Status, &sub.CurrentPeriodEnd, &sub.ProviderSubscriptionID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM tenant_subscriptions WHERE tenant_id = $1`
	return r.scan(r.db.QueryRow(ctx, query, tenantID))
}

func (r *subscriptionRepo) GetByProviderID(ctx context.Context, providerID string) (*models.TenantSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM tenant_subscriptions WHERE provider_subscription_id = $1`
	return r.scan(r.db.QueryRow(ctx, query, providerID))
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *models.TenantSubscription) error {
	query := `
		UPDATE tenant_subscriptions
		SET plan_key = $1, billing_interval = $2, status = $3, current_period_end = $4, provider_subscription_id = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, sub.PlanKey, sub.BillingInterval, sub.Status, sub.CurrentPeriodEnd, sub.ProviderSubscriptionID, sub.ID)
	return err
}
