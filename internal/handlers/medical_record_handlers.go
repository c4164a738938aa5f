package handlers

import (
	"errors"
	"net/http"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MedicalRecordHandlers struct {
	recordSvc services.MedicalRecordService
}

func NewMedicalRecordHandlers(recordSvc services.MedicalRecordService) *MedicalRecordHandlers {
	return &MedicalRecordHandlers{recordSvc: recordSvc}
}

func (h *MedicalRecordHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateMedicalRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	record, err := h.recordSvc.Create(ctx, tenantID, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *MedicalRecordHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid record ID")
	}

	record, err := h.recordSvc.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Medical record")
	}
	return c.JSON(http.StatusOK, record)
}

func (h *MedicalRecordHandlers) ListByPet(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	petID, err := uuid.Parse(c.Param("petId"))
	if err != nil {
		return common.SendValidationError(c, "petId", "Invalid pet ID")
	}

	limit, offset := paginationParams(c)
	records, err := h.recordSvc.ListByPet(ctx, tenantID, petID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list medical records")
	}
	return c.JSON(http.StatusOK, records)
}

// AttachDocument accepts a multipart upload (field "file") and stores it
// against the record, returning a presigned URL.
func (h *MedicalRecordHandlers) AttachDocument(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid record ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "A file upload is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.recordSvc.AttachDocument(ctx, tenantID, id, fileHeader.Filename, contentType, src, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrLimitExceeded) {
			return echo.NewHTTPError(http.StatusPaymentRequired, "Storage limit reached for the current plan")
		}
		return common.SendServerError(c, "Failed to attach document")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
