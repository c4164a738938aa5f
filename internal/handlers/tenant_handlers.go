package handlers

import (
	"errors"
	"net/http"
	"time"

	"vetly/internal/caching"
	"vetly/internal/common"
	"vetly/internal/repositories"
	"vetly/internal/services"

	"github.com/labstack/echo/v4"
)

const tenantCacheTTL = 5 * time.Minute

// TenantHandlers exposes clinic provisioning and per-clinic settings
type TenantHandlers struct {
	provisioningSvc services.ProvisioningService
	authService     services.AuthService
	tenantRepo      repositories.TenantRepository
	settingsRepo    repositories.TenantSettingsRepository
	statsRepo       repositories.UsageStatsRepository
	cacheSvc        caching.CacheService
}

func NewTenantHandlers(provisioningSvc services.ProvisioningService, authService services.AuthService, tenantRepo repositories.TenantRepository, settingsRepo repositories.TenantSettingsRepository, statsRepo repositories.UsageStatsRepository, cacheSvc caching.CacheService) *TenantHandlers {
	return &TenantHandlers{
		provisioningSvc: provisioningSvc,
		authService:     authService,
		tenantRepo:      tenantRepo,
		settingsRepo:    settingsRepo,
		statsRepo:       statsRepo,
		cacheSvc:        cacheSvc,
	}
}

type CreateClinicRequest struct {
	Name            string `json:"name" validate:"required"`
	Slug            string `json:"slug" validate:"required"`
	PlanKey         string `json:"plan_key"`
	BillingInterval string `json:"billing_interval"`
}

// CreateClinic provisions a clinic for the authenticated user and hands
// back fresh tokens carrying the new tenant claim.
func (h *TenantHandlers) CreateClinic(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateClinicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenant, err := h.provisioningSvc.CreateClinic(ctx, &services.CreateClinicRequest{
		Name:            req.Name,
		Slug:            req.Slug,
		UserID:          userID,
		PlanKey:         req.PlanKey,
		BillingInterval: req.BillingInterval,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSlugTaken):
			return common.SendConflictError(c, "Slug is already in use")
		case errors.Is(err, services.ErrPlanNotFound), errors.Is(err, services.ErrInvalidInterval):
			return common.SendClientError(c, err.Error())
		default:
			return common.SendServerError(c, "Failed to create clinic")
		}
	}

	tokens, err := h.authService.GenerateTokens(ctx, userID, &tenant.ID)
	if err != nil {
		return common.SendServerError(c, "Clinic created but token refresh failed, please log in again")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"tenant": tenant,
		"tokens": tokens,
	})
}

func (h *TenantHandlers) GetCurrent(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if tenant, err := h.cacheSvc.GetTenant(ctx, tenantID); err == nil {
		return c.JSON(http.StatusOK, tenant)
	}

	tenant, err := h.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "Clinic")
	}
	_ = h.cacheSvc.SetTenant(ctx, tenant, tenantCacheTTL)
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) GetUsage(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.statsRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "Usage stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *TenantHandlers) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	settings, err := h.settingsRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "Settings")
	}
	return c.JSON(http.StatusOK, settings)
}

type UpdateSettingsRequest struct {
	Timezone         string `json:"timezone"`
	Currency         string `json:"currency"`
	AppointmentSlots int    `json:"appointment_slots"`
	RemindersEnabled *bool  `json:"reminders_enabled"`
}

func (h *TenantHandlers) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	settings, err := h.settingsRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "Settings")
	}

	if req.Timezone != "" {
		settings.Timezone = req.Timezone
	}
	if req.Currency != "" {
		settings.Currency = req.Currency
	}
	if req.AppointmentSlots > 0 {
		settings.AppointmentSlots = req.AppointmentSlots
	}
	if req.RemindersEnabled != nil {
		settings.RemindersEnabled = *req.RemindersEnabled
	}

	if err := h.settingsRepo.Update(ctx, settings); err != nil {
		return common.SendServerError(c, "Failed to update settings")
	}
	return c.JSON(http.StatusOK, settings)
}
