package handlers

import (
	"context"
	"errors"
	"net/http"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CashDrawerHandlers struct {
	drawerSvc services.CashDrawerService
}

func NewCashDrawerHandlers(drawerSvc services.CashDrawerService) *CashDrawerHandlers {
	return &CashDrawerHandlers{drawerSvc: drawerSvc}
}

type OpenShiftRequest struct {
	OpeningBalance float64 `json:"opening_balance"`
}

func (h *CashDrawerHandlers) OpenShift(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, userID, ok := tenantAndUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req OpenShiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	shift, err := h.drawerSvc.OpenShift(ctx, tenantID, userID, req.OpeningBalance)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrShiftAlreadyOpen):
			return common.SendConflictError(c, "You already have an open shift")
		case errors.Is(err, services.ErrLimitExceeded):
			return echo.NewHTTPError(http.StatusPaymentRequired, "Cash register limit reached for the current plan")
		default:
			return common.SendClientError(c, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, shift)
}

func (h *CashDrawerHandlers) RegisterSale(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, userID, ok := tenantAndUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.RegisterSaleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	sale, err := h.drawerSvc.RegisterSale(ctx, tenantID, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotOpen) {
			return common.SendConflictError(c, "No open shift to register the sale against")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, sale)
}

type WithdrawalRequest struct {
	Amount float64 `json:"amount"`
}

func (h *CashDrawerHandlers) RegisterWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, userID, ok := tenantAndUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.drawerSvc.RegisterWithdrawal(ctx, tenantID, userID, req.Amount); err != nil {
		if errors.Is(err, services.ErrShiftNotOpen) {
			return common.SendConflictError(c, "No open shift to withdraw from")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type CloseShiftRequest struct {
	CountedBalance float64 `json:"counted_balance"`
}

func (h *CashDrawerHandlers) CloseShift(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, userID, ok := tenantAndUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CloseShiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	shift, err := h.drawerSvc.CloseShift(ctx, tenantID, userID, req.CountedBalance)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotOpen) {
			return common.SendConflictError(c, "No open shift to close")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, shift)
}

func (h *CashDrawerHandlers) GetShift(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid shift ID")
	}

	shift, err := h.drawerSvc.GetShift(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Shift")
	}
	return c.JSON(http.StatusOK, shift)
}

func (h *CashDrawerHandlers) ListShifts(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)
	shifts, err := h.drawerSvc.ListShifts(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list shifts")
	}
	return c.JSON(http.StatusOK, shifts)
}

func tenantAndUser(ctx context.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, ok = common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok = common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}
