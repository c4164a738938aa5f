package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type TenantSettingsRepository interface {
	Create(ctx context.Context, settings *models.TenantSettings) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error)
	Update(ctx context.Context, settings *models.TenantSettings) error
}

type tenantSettingsRepo struct {
	db DBTX
}

func NewTenantSettingsRepository(db DBTX) TenantSettingsRepository {
	return &tenantSettingsRepo{db: db}
}

func (r *tenantSettingsRepo) Create(ctx context.Context, settings *models.TenantSettings) error {
	query := `
		INSERT INTO tenant_settings (id, tenant_id, timezone, currency, appointment_slot_minutes, reminders_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, settings.ID, settings.TenantID, settings.Timezone, settings.Currency, settings.AppointmentSlots, settings.RemindersEnabled)
	return err
}

func (r *tenantSettingsRepo) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error) {
	settings := &models.TenantSettings{}
	query := `
		SELECT id, tenant_id, timezone, currency, appointment_slot_minutes, reminders_enabled, created_at, updated_at
		FROM tenant_settings
		WHERE tenant_id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&settings.ID, &settings.TenantID, &settings.Timezone, &settings.Currency, &settings.AppointmentSlots, &settings.RemindersEnabled, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *tenantSettingsRepo) Update(ctx context.Context, settings *models.TenantSettings) error {
	query := `
		UPDATE tenant_settings
		SET timezone = $1, currency = $2, appointment_slot_minutes = $3, reminders_enabled = $4, updated_at = NOW()
		WHERE tenant_id = $5
	`
	_, err := r.db.Exec(ctx, query, settings.Timezone, settings.Currency, settings.AppointmentSlots, settings.RemindersEnabled, settings.TenantID)
	return err
}
