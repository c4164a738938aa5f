package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"vetly/internal/caching"
	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
)

// Plan change result kinds.
const (
	ChangeKindTrialConversion     = "trial_conversion"
	ChangeKindSubscriptionUpgrade = "subscription_upgrade"
)

type ChangePlanRequest struct {
	TargetPlan      string `json:"target_plan" validate:"required"`
	BillingInterval string `json:"billing_interval" validate:"required"`
	FromTrial       bool   `json:"from_trial"`
	CustomerEmail   string `json:"customer_email"`
	SuccessURL      string `json:"success_url"`
	CancelURL       string `json:"cancel_url"`
}

// PlanChangeResult is the discriminated result of a plan change. Kind is
// either trial_conversion (checkout URL, nothing mutated yet) or
// subscription_upgrade (proration info, change applied immediately).
type PlanChangeResult struct {
	Kind               string     `json:"kind"`
	CheckoutURL        string     `json:"checkout_url,omitempty"`
	ProrationAmount    float64    `json:"proration_amount,omitempty"`
	ProrationDate      *time.Time `json:"proration_date,omitempty"`
	NewPlanKey         string     `json:"new_plan_key"`
	BillingInterval    string     `json:"billing_interval"`
	NewRecurringAmount float64    `json:"new_recurring_amount"`
	Currency           string     `json:"currency"`
	TierChange         int        `json:"tier_change"`
}

// BillingService transitions subscriptions between plans and applies the
// asynchronous confirmations coming back from the payment provider.
type BillingService interface {
	ChangePlan(ctx context.Context, tenantID uuid.UUID, req *ChangePlanRequest) (*PlanChangeResult, error)
	ApplyWebhookEvent(ctx context.Context, event *PaymentWebhookEvent) error
	ExpireOverdueTrials(ctx context.Context) (int, error)
	GetSubscription(ctx context.Context, tenantID uuid.UUID) (*models.TenantSubscription, error)
}

type billingService struct {
	db               Database
	tenantRepo       repositories.TenantRepository
	subscriptionRepo repositories.SubscriptionRepository
	paymentSvc       PaymentService
	cacheSvc         caching.CacheService
}

func NewBillingService(db Database, paymentSvc PaymentService, cacheSvc caching.CacheService) BillingService {
	return &billingService{
		db:               db,
		tenantRepo:       repositories.NewTenantRepository(db),
		subscriptionRepo: repositories.NewSubscriptionRepository(db),
		paymentSvc:       paymentSvc,
		cacheSvc:         cacheSvc,
	}
}

func (s *billingService) GetSubscription(ctx context.Context, tenantID uuid.UUID) (*models.TenantSubscription, error) {
	return s.subscriptionRepo.GetByTenantID(ctx, tenantID)
}

func (s *billingService) ChangePlan(ctx context.Context, tenantID uuid.UUID, req *ChangePlanRequest) (*PlanChangeResult, error) {
	target, err := PlanByKey(req.TargetPlan)
	if err != nil {
		return nil, err
	}
	interval, err := NormalizeInterval(req.BillingInterval)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	current, err := PlanByKey(sub.PlanKey)
	if err != nil {
		return nil, err
	}
	tierChange := target.Tier - current.Tier

	switch sub.Status {
	case models.SubscriptionStatusTrialing:
		// Payment has never been collected; hand off to hosted checkout
		// and let the webhook apply the state change.
		session, err := s.paymentSvc.CreateCheckoutSession(ctx, &CheckoutSessionRequest{
			TenantID:        tenantID,
			PlanKey:         target.Key,
			BillingInterval: interval,
			CustomerEmail:   req.CustomerEmail,
			SuccessURL:      req.SuccessURL,
			CancelURL:       req.CancelURL,
		})
		if err != nil {
			return nil, err
		}
		return &PlanChangeResult{
			Kind:               ChangeKindTrialConversion,
			CheckoutURL:        session.URL,
			NewPlanKey:         target.Key,
			BillingInterval:    interval,
			NewRecurringAmount: target.Price(interval),
			Currency:           target.Currency,
			TierChange:         tierChange,
		}, nil

	case models.SubscriptionStatusActive:
		prorationAmount := s.proration(sub, current, target, interval)
		now := time.Now().UTC()

		if sub.ProviderSubscriptionID != nil {
			if err := s.paymentSvc.ChangeSubscriptionPlan(ctx, *sub.ProviderSubscriptionID, priceID(target.Key, interval)); err != nil {
				return nil, err
			}
		}

		sub.PlanKey = target.Key
		sub.BillingInterval = interval
		if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}
		if s.cacheSvc != nil {
			_ = s.cacheSvc.InvalidateTenantCache(ctx, tenantID)
		}

		return &PlanChangeResult{
			Kind:               ChangeKindSubscriptionUpgrade,
			ProrationAmount:    prorationAmount,
			ProrationDate:      &now,
			NewPlanKey:         target.Key,
			BillingInterval:    interval,
			NewRecurringAmount: target.Price(interval),
			Currency:           target.Currency,
			TierChange:         tierChange,
		}, nil

	default:
		return nil, ErrSubscriptionState
	}
}

// proration charges (or credits) the price difference for the unused part
// of the current billing period.
func (s *billingService) proration(sub *models.TenantSubscription, current, target PlanConfig, interval string) float64 {
	if sub.CurrentPeriodEnd == nil {
		return 0
	}
	remaining := time.Until(*sub.CurrentPeriodEnd)
	if remaining <= 0 {
		return 0
	}
	period := 30 * 24 * time.Hour
	if sub.BillingInterval == models.BillingIntervalYearly {
		period = 365 * 24 * time.Hour
	}
	fraction := remaining.Seconds() / period.Seconds()
	if fraction > 1 {
		fraction = 1
	}
	diff := target.Price(interval) - current.Price(sub.BillingInterval)
	return math.Round(diff*fraction*100) / 100
}

// ApplyWebhookEvent mutates subscription state from a verified provider
// event. Trial conversions land here: tenant and subscription rows are
// updated together in one transaction.
func (s *billingService) ApplyWebhookEvent(ctx context.Context, event *PaymentWebhookEvent) error {
	switch event.Type {
	case WebhookCheckoutCompleted:
		tenantID, err := uuid.Parse(event.TenantID)
		if err != nil {
			return fmt.Errorf("webhook carries invalid tenant id: %w", err)
		}
		plan, err := PlanByKey(event.PlanKey)
		if err != nil {
			return err
		}
		interval, err := NormalizeInterval(event.Interval)
		if err != nil {
			return err
		}
		return s.activate(ctx, tenantID, plan, interval, event.SubscriptionID)

	case WebhookSubscriptionCanceled:
		return s.setStatusByProviderID(ctx, event.SubscriptionID, models.SubscriptionStatusCancelled)

	case WebhookPaymentFailed:
		return s.setStatusByProviderID(ctx, event.SubscriptionID, models.SubscriptionStatusPastDue)

	default:
		// Unhandled event types are acknowledged without action.
		return nil
	}
}

func (s *billingService) activate(ctx context.Context, tenantID uuid.UUID, plan PlanConfig, interval, providerSubID string) error {
	periodEnd := time.Now().UTC().AddDate(0, 1, 0)
	if interval == models.BillingIntervalYearly {
		periodEnd = time.Now().UTC().AddDate(1, 0, 0)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin activation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantRepo := repositories.NewTenantRepository(tx)
	subscriptionRepo := repositories.NewSubscriptionRepository(tx)

	tenant, err := tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	sub, err := subscriptionRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	tenant.SubscriptionStatus = models.SubscriptionStatusActive
	tenant.IsTrialPeriod = false
	tenant.TrialEndsAt = nil
	if err := tenantRepo.UpdateSubscriptionState(ctx, tenant); err != nil {
		return fmt.Errorf("failed to update tenant state: %w", err)
	}

	sub.PlanKey = plan.Key
	sub.BillingInterval = interval
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodEnd = &periodEnd
	if providerSubID != "" {
		sub.ProviderSubscriptionID = &providerSubID
	}
	if err := subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}

	if s.cacheSvc != nil {
		_ = s.cacheSvc.InvalidateTenantCache(ctx, tenantID)
	}
	return nil
}

func (s *billingService) setStatusByProviderID(ctx context.Context, providerSubID, status string) error {
	sub, err := s.subscriptionRepo.GetByProviderID(ctx, providerSubID)
	if err != nil {
		return fmt.Errorf("failed to find subscription %s: %w", providerSubID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tenantRepo := repositories.NewTenantRepository(tx)
	subscriptionRepo := repositories.NewSubscriptionRepository(tx)

	tenant, err := tenantRepo.GetByID(ctx, sub.TenantID)
	if err != nil {
		return err
	}
	tenant.SubscriptionStatus = status
	if err := tenantRepo.UpdateSubscriptionState(ctx, tenant); err != nil {
		return err
	}

	sub.Status = status
	if err := subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.InvalidateTenantCache(ctx, sub.TenantID)
	}
	return nil
}

// ExpireOverdueTrials marks tenants whose trial window has passed and
// never converted. Called from the background scheduler.
func (s *billingService) ExpireOverdueTrials(ctx context.Context) (int, error) {
	tenants, err := s.tenantRepo.ListExpiredTrials(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired trials: %w", err)
	}

	expired := 0
	for _, tenant := range tenants {
		if err := s.expireTrial(ctx, tenant); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

func (s *billingService) expireTrial(ctx context.Context, tenant *models.Tenant) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tenantRepo := repositories.NewTenantRepository(tx)
	subscriptionRepo := repositories.NewSubscriptionRepository(tx)

	tenant.SubscriptionStatus = models.SubscriptionStatusExpired
	tenant.IsTrialPeriod = false
	if err := tenantRepo.UpdateSubscriptionState(ctx, tenant); err != nil {
		return err
	}

	sub, err := subscriptionRepo.GetByTenantID(ctx, tenant.ID)
	if err != nil {
		return err
	}
	sub.Status = models.SubscriptionStatusExpired
	if err := subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.InvalidateTenantCache(ctx, tenant.ID)
	}
	return nil
}

func priceID(planKey, interval string) string {
	return fmt.Sprintf("%s_%s", strings.ToLower(planKey), interval)
}
