package handlers

import (
	"io"
	"net/http"

	"vetly/internal/services"

	"github.com/labstack/echo/v4"
)

type WebhookHandlers struct {
	paymentSvc services.PaymentService
	billingSvc services.BillingService
}

func NewWebhookHandlers(paymentSvc services.PaymentService, billingSvc services.BillingService) *WebhookHandlers {
	return &WebhookHandlers{paymentSvc: paymentSvc, billingSvc: billingSvc}
}

// HandlePaymentWebhook verifies the provider signature over the raw body
// before anything is parsed or applied. Unknown event types are acked with
// 200 so the provider stops retrying them.
func (h *WebhookHandlers) HandlePaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	signature := c.Request().Header.Get("X-Webhook-Signature")
	event, err := h.paymentSvc.VerifyWebhook(body, signature)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	if err := h.billingSvc.ApplyWebhookEvent(c.Request().Context(), event); err != nil {
		c.Logger().Errorf("failed to apply webhook event %s (%s): %v", event.ID, event.Type, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process event")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "processed"})
}
