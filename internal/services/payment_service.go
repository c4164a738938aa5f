package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// PaymentService wraps the hosted-checkout payment provider. Trial
// conversions are collected through a hosted checkout page; the provider
// confirms asynchronously via webhook.
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	ChangeSubscriptionPlan(ctx context.Context, providerSubscriptionID, priceID string) error
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
	VerifyWebhook(rawBody []byte, signature string) (*PaymentWebhookEvent, error)
}

type CheckoutSessionRequest struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	PlanKey         string    `json:"plan_key"`
	BillingInterval string    `json:"billing_interval"`
	CustomerEmail   string    `json:"customer_email"`
	SuccessURL      string    `json:"success_url"`
	CancelURL       string    `json:"cancel_url"`
}

type CheckoutSession struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Webhook event types emitted by the provider.
const (
	WebhookCheckoutCompleted    = "checkout.completed"
	WebhookSubscriptionUpdated  = "subscription.updated"
	WebhookSubscriptionCanceled = "subscription.cancelled"
	WebhookPaymentFailed        = "payment.failed"
)

type PaymentWebhookEvent struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	SubscriptionID string         `json:"subscription_id"`
	TenantID       string         `json:"tenant_id"`
	PlanKey        string         `json:"plan_key"`
	Interval       string         `json:"billing_interval"`
	Data           map[string]any `json:"data"`
	Created        int64          `json:"created"`
}

type paymentService struct {
	apiKey        string
	apiSecret     string
	webhookSecret string
	baseURL       string
	http          *http.Client
}

func NewPaymentService(apiKey, apiSecret, webhookSecret, baseURL string) PaymentService {
	return &paymentService{
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		http:          &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	body, err := s.makeRequest(ctx, http.MethodPost, "/checkout/sessions", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	session := &CheckoutSession{}
	if err := json.Unmarshal(body, session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return session, nil
}

func (s *paymentService) ChangeSubscriptionPlan(ctx context.Context, providerSubscriptionID, priceID string) error {
	payload := map[string]any{"price_id": priceID, "prorate": true}
	_, err := s.makeRequest(ctx, http.MethodPatch, "/subscriptions/"+providerSubscriptionID, payload)
	if err != nil {
		return fmt.Errorf("failed to change subscription plan: %w", err)
	}
	return nil
}

func (s *paymentService) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	_, err := s.makeRequest(ctx, http.MethodDelete, "/subscriptions/"+providerSubscriptionID, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

// VerifyWebhook checks the HMAC-SHA256 signature over the raw body before
// parsing. A forged or tampered payload is rejected.
func (s *paymentService) VerifyWebhook(rawBody []byte, signature string) (*PaymentWebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid webhook signature")
	}

	event := &PaymentWebhookEvent{}
	if err := json.Unmarshal(rawBody, event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	return event, nil
}

func (s *paymentService) makeRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}
	return data, nil
}
