package handlers

import (
	"errors"
	"net/http"
	"time"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AppointmentHandlers struct {
	appointmentSvc services.AppointmentService
}

func NewAppointmentHandlers(appointmentSvc services.AppointmentService) *AppointmentHandlers {
	return &AppointmentHandlers{appointmentSvc: appointmentSvc}
}

func (h *AppointmentHandlers) Schedule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ScheduleAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	appt, err := h.appointmentSvc.Schedule(ctx, tenantID, &req)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentOverlap) {
			return common.SendConflictError(c, "The veterinarian already has an appointment in that slot")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *AppointmentHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid appointment ID")
	}

	appt, err := h.appointmentSvc.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Appointment")
	}
	return c.JSON(http.StatusOK, appt)
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AppointmentHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid appointment ID")
	}

	var req UpdateAppointmentStatusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status is required")
	}

	appt, err := h.appointmentSvc.UpdateStatus(ctx, tenantID, id, req.Status)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

type RescheduleRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

func (h *AppointmentHandlers) Reschedule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid appointment ID")
	}

	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	appt, err := h.appointmentSvc.Reschedule(ctx, tenantID, id, req.StartsAt, req.EndsAt)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentOverlap) {
			return common.SendConflictError(c, "The veterinarian already has an appointment in that slot")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

// ListByDay returns the agenda for a given date (?date=2026-01-15,
// defaults to today).
func (h *AppointmentHandlers) ListByDay(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	day := time.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendValidationError(c, "date", "Date must be in YYYY-MM-DD format")
		}
		day = parsed
	}

	appts, err := h.appointmentSvc.ListByDay(ctx, tenantID, day)
	if err != nil {
		return common.SendServerError(c, "Failed to list appointments")
	}
	return c.JSON(http.StatusOK, appts)
}
