package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PetHandlers struct {
	petSvc services.PetService
}

func NewPetHandlers(petSvc services.PetService) *PetHandlers {
	return &PetHandlers{petSvc: petSvc}
}

func (h *PetHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	pet, err := h.petSvc.Create(ctx, tenantID, &req)
	if err != nil {
		if errors.Is(err, services.ErrLimitExceeded) {
			return echo.NewHTTPError(http.StatusPaymentRequired, "Pet limit reached for the current plan")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, pet)
}

func (h *PetHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid pet ID")
	}

	pet, err := h.petSvc.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Pet")
	}
	return c.JSON(http.StatusOK, pet)
}

func (h *PetHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid pet ID")
	}

	var req services.UpdatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	pet, err := h.petSvc.Update(ctx, tenantID, id, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, pet)
}

func (h *PetHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if term := c.QueryParam("q"); term != "" {
		pets, err := h.petSvc.Search(ctx, tenantID, term)
		if err != nil {
			return common.SendServerError(c, "Failed to search pets")
		}
		return c.JSON(http.StatusOK, pets)
	}

	limit, offset := paginationParams(c)
	pets, err := h.petSvc.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list pets")
	}
	return c.JSON(http.StatusOK, pets)
}

func paginationParams(c echo.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
