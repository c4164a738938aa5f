package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vetly/internal/caching"
	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Database is the pool-level surface the transactional services need.
// *pgxpool.Pool satisfies it, as does pgxmock in tests.
type Database interface {
	repositories.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProvisioningService creates a clinic tenant together with all of its
// companion rows. The whole sequence runs in a single transaction: either
// the tenant exists with settings, usage stats, default roles, an admin
// link and a trial subscription, or nothing was written.
type ProvisioningService interface {
	CreateClinic(ctx context.Context, req *CreateClinicRequest) (*models.Tenant, error)
}

type CreateClinicRequest struct {
	Name            string    `json:"name" validate:"required"`
	Slug            string    `json:"slug" validate:"required"`
	UserID          uuid.UUID `json:"user_id" validate:"required"`
	PlanKey         string    `json:"plan_key"`
	BillingInterval string    `json:"billing_interval"`
}

type provisioningService struct {
	db       Database
	tenants  repositories.TenantRepository
	cacheSvc caching.CacheService
}

func NewProvisioningService(db Database, cacheSvc caching.CacheService) ProvisioningService {
	return &provisioningService{
		db:       db,
		tenants:  repositories.NewTenantRepository(db),
		cacheSvc: cacheSvc,
	}
}

func (s *provisioningService) CreateClinic(ctx context.Context, req *CreateClinicRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Slug == "" {
		return nil, errors.New("name and slug are required")
	}
	if req.UserID == uuid.Nil {
		return nil, errors.New("user id is required")
	}
	if strings.TrimSpace(req.Slug) != req.Slug || strings.Contains(req.Slug, " ") {
		return nil, errors.New("slug cannot have spaces")
	}

	planKey := req.PlanKey
	if planKey == "" {
		planKey = DefaultPlanKey
	}
	plan, err := PlanByKey(planKey)
	if err != nil {
		return nil, err
	}

	interval := req.BillingInterval
	if interval == "" {
		interval = models.BillingIntervalMonthly
	}
	interval, err = NormalizeInterval(interval)
	if err != nil {
		return nil, err
	}

	// Conflict check before any write.
	if _, err := s.tenants.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	now := time.Now().UTC()
	trialEndsAt := now.AddDate(0, 0, TrialDays)

	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               req.Name,
		Slug:               req.Slug,
		SubscriptionStatus: models.SubscriptionStatusTrialing,
		IsTrialPeriod:      true,
		TrialEndsAt:        &trialEndsAt,
		Status:             "active",
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin provisioning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantRepo := repositories.NewTenantRepository(tx)
	settingsRepo := repositories.NewTenantSettingsRepository(tx)
	statsRepo := repositories.NewUsageStatsRepository(tx)
	roleRepo := repositories.NewRoleRepository(tx)
	userRoleRepo := repositories.NewUserRoleRepository(tx)
	userRepo := repositories.NewUserRepository(tx)
	subscriptionRepo := repositories.NewSubscriptionRepository(tx)

	if err := tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	settings := &models.TenantSettings{
		ID:               uuid.New(),
		TenantID:         tenant.ID,
		Timezone:         "America/Mexico_City",
		Currency:         plan.Currency,
		AppointmentSlots: 30,
		RemindersEnabled: true,
	}
	if err := settingsRepo.Create(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create tenant settings: %w", err)
	}

	stats := &models.TenantUsageStats{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		TotalUsers: 1,
	}
	if err := statsRepo.Create(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to create usage stats: %w", err)
	}

	adminRoleID, err := s.seedDefaultRoles(ctx, roleRepo, tenant.ID)
	if err != nil {
		return nil, err
	}

	userRole := &models.UserRole{
		ID:     uuid.New(),
		UserID: req.UserID,
		RoleID: adminRoleID,
	}
	if err := userRoleRepo.Create(ctx, userRole); err != nil {
		return nil, fmt.Errorf("failed to link admin role: %w", err)
	}

	if err := userRepo.AssignTenant(ctx, req.UserID, tenant.ID); err != nil {
		return nil, fmt.Errorf("failed to assign user to tenant: %w", err)
	}

	// The subscription shares the tenant's trial timestamp value; it is
	// not recomputed, so the two always agree.
	subscription := &models.TenantSubscription{
		ID:               uuid.New(),
		TenantID:         tenant.ID,
		PlanKey:          plan.Key,
		BillingInterval:  interval,
		Status:           models.SubscriptionStatusTrialing,
		CurrentPeriodEnd: &trialEndsAt,
	}
	if err := subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit provisioning transaction: %w", err)
	}

	if s.cacheSvc != nil {
		_ = s.cacheSvc.InvalidateTenantCache(ctx, tenant.ID)
	}

	return tenant, nil
}

var defaultRoles = []struct {
	key  string
	name string
	desc string
}{
	{models.RoleAdmin, "Administrador", "Full access to clinic management and billing"},
	{models.RoleVeterinarian, "Veterinario", "Appointments, medical records and pets"},
	{models.RoleAssistant, "Asistente", "Scheduling and point of sale"},
}

func (s *provisioningService) seedDefaultRoles(ctx context.Context, roleRepo repositories.RoleRepository, tenantID uuid.UUID) (uuid.UUID, error) {
	var adminRoleID uuid.UUID
	for _, def := range defaultRoles {
		desc := def.desc
		role := &models.Role{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Key:         def.key,
			Name:        def.name,
			Description: &desc,
		}
		if err := roleRepo.Create(ctx, role); err != nil {
			return uuid.Nil, fmt.Errorf("failed to seed role %s: %w", def.key, err)
		}
		if def.key == models.RoleAdmin {
			adminRoleID = role.ID
		}
	}
	return adminRoleID, nil
}
