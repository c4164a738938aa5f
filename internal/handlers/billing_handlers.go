package handlers

import (
	"errors"
	"net/http"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/labstack/echo/v4"
)

type BillingHandlers struct {
	billingSvc services.BillingService
	limitsSvc  services.LimitsService
}

func NewBillingHandlers(billingSvc services.BillingService, limitsSvc services.LimitsService) *BillingHandlers {
	return &BillingHandlers{billingSvc: billingSvc, limitsSvc: limitsSvc}
}

// ListPlans is public so the pricing page can render without a session.
func (h *BillingHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, services.AvailablePlans())
}

func (h *BillingHandlers) GetSubscription(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	sub, err := h.billingSvc.GetSubscription(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "Subscription")
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *BillingHandlers) ChangePlan(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ChangePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.TargetPlan == "" {
		return common.SendValidationError(c, "target_plan", "Target plan is required")
	}

	result, err := h.billingSvc.ChangePlan(ctx, tenantID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanNotFound), errors.Is(err, services.ErrInvalidInterval):
			return common.SendClientError(c, err.Error())
		case errors.Is(err, services.ErrSubscriptionState):
			return common.SendConflictError(c, "Subscription is not in a state that allows plan changes")
		default:
			return common.SendServerError(c, "Failed to change plan")
		}
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BillingHandlers) CheckLimit(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	resource := c.Param("resource")
	info, err := h.limitsSvc.CheckResource(ctx, tenantID, resource)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, info)
}
