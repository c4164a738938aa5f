package repositories

import (
	"context"
	"fmt"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type UsageStatsRepository interface {
	Create(ctx context.Context, stats *models.TenantUsageStats) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageStats, error)
	Increment(ctx context.Context, tenantID uuid.UUID, counter string, delta int64) error
}

type usageStatsRepo struct {
	db DBTX
}

func NewUsageStatsRepository(db DBTX) UsageStatsRepository {
	return &usageStatsRepo{db: db}
}

// Counter column names accepted by Increment. Allowlisted to keep the
// dynamic column out of injection territory.
var usageCounters = map[string]bool{
	"total_users":            true,
	"total_pets":             true,
	"total_cash_registers":   true,
	"storage_used_mb":        true,
	"whatsapp_messages_sent": true,
}

func (r *usageStatsRepo) Create(ctx context.Context, stats *models.TenantUsageStats) error {
	query := `
		INSERT INTO tenant_usage_stats (id, tenant_id, total_users, total_pets, total_cash_registers, storage_used_mb, whatsapp_messages_sent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, stats.ID, stats.TenantID, stats.TotalUsers, stats.TotalPets, stats.TotalCashRegisters, stats.StorageUsedMB, stats.WhatsAppMessagesSent)
	return err
}

func (r *usageStatsRepo) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageStats, error) {
	stats := &models.TenantUsageStats{}
	query := `
		SELECT id, tenant_id, total_users, total_pets, total_cash_registers, storage_used_mb, whatsapp_messages_sent, updated_at
		FROM tenant_usage_stats
		WHERE tenant_id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&stats.ID, &stats.TenantID, &stats.TotalUsers, &stats.TotalPets, &stats.TotalCashRegisters, &stats.StorageUsedMB, &stats.WhatsAppMessagesSent, &stats.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *usageStatsRepo) Increment(ctx context.Context, tenantID uuid.UUID, counter string, delta int64) error {
	if !usageCounters[counter] {
		return fmt.Errorf("unknown usage counter: %s", counter)
	}
	query := fmt.Sprintf(`
		UPDATE tenant_usage_stats
		SET %s = %s + $1, updated_at = NOW()
		WHERE tenant_id = $2
	`, counter, counter)
	_, err := r.db.Exec(ctx, query, delta, tenantID)
	return err
}
