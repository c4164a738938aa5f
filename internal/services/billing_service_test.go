package services

import (
	"context"
	"testing"
	"time"

	"vetly/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentService) ChangeSubscriptionPlan(ctx context.Context, providerSubID, priceID string) error {
	args := m.Called(ctx, providerSubID, priceID)
	return args.Error(0)
}

func (m *MockPaymentService) CancelSubscription(ctx context.Context, providerSubID string) error {
	args := m.Called(ctx, providerSubID)
	return args.Error(0)
}

func (m *MockPaymentService) VerifyWebhook(rawBody []byte, signature string) (*PaymentWebhookEvent, error) {
	args := m.Called(rawBody, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentWebhookEvent), args.Error(1)
}

var subscriptionCols = []string{
	"id", "tenant_id", "plan_key", "billing_interval", "status",
	"current_period_end", "provider_subscription_id", "created_at", "updated_at",
}

var tenantCols = []string{
	"id", "name", "slug", "subscription_status", "is_trial_period",
	"trial_ends_at", "status", "created_at", "updated_at",
}

type BillingServiceTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	paymentSvc *MockPaymentService
	service    BillingService
	ctx        context.Context
	tenantID   uuid.UUID
	subID      uuid.UUID
}

func (suite *BillingServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.paymentSvc = &MockPaymentService{}
	suite.paymentSvc.Test(suite.T())
	suite.service = NewBillingService(mock, suite.paymentSvc, nil)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.subID = uuid.New()
}

func (suite *BillingServiceTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.paymentSvc.AssertExpectations(suite.T())
	suite.mock.Close()
}

func TestBillingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}

func (suite *BillingServiceTestSuite) expectSubscription(status, planKey, interval string, periodEnd *time.Time, providerID *string) {
	rows := pgxmock.NewRows(subscriptionCols).AddRow(
		suite.subID, suite.tenantID, planKey, interval, status,
		periodEnd, providerID, time.Now(), time.Now(),
	)
	suite.mock.ExpectQuery(`SELECT .* FROM tenant_subscriptions WHERE tenant_id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)
}

func (suite *BillingServiceTestSuite) TestChangePlan_TrialConversionGoesToCheckout() {
	periodEnd := time.Now().UTC().AddDate(0, 0, 20)
	suite.expectSubscription(models.SubscriptionStatusTrialing, "PROFESIONAL", "monthly", &periodEnd, nil)

	suite.paymentSvc.On("CreateCheckoutSession", suite.ctx, mock.MatchedBy(func(req *CheckoutSessionRequest) bool {
		return req.TenantID == suite.tenantID && req.PlanKey == "CLINICA" && req.BillingInterval == "yearly"
	})).Return(&CheckoutSession{ID: "cs_123", URL: "https://pay.example/cs_123"}, nil)

	result, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, &ChangePlanRequest{
		TargetPlan:      "CLINICA",
		BillingInterval: "annual",
		CustomerEmail:   "dueno@vetluna.mx",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), ChangeKindTrialConversion, result.Kind)
	assert.Equal(suite.T(), "https://pay.example/cs_123", result.CheckoutURL)
	assert.Equal(suite.T(), "CLINICA", result.NewPlanKey)
	assert.Equal(suite.T(), "yearly", result.BillingInterval)
	assert.Equal(suite.T(), 9990.0, result.NewRecurringAmount)
	assert.Equal(suite.T(), 1, result.TierChange)
	assert.Zero(suite.T(), result.ProrationAmount)
}

func (suite *BillingServiceTestSuite) TestChangePlan_ActiveUpgradeProratesAndApplies() {
	providerID := "psub_42"
	periodEnd := time.Now().UTC().Add(15 * 24 * time.Hour)
	suite.expectSubscription(models.SubscriptionStatusActive, "PROFESIONAL", "monthly", &periodEnd, &providerID)

	suite.paymentSvc.On("ChangeSubscriptionPlan", suite.ctx, "psub_42", "clinica_monthly").Return(nil)

	suite.mock.ExpectExec(`UPDATE tenant_subscriptions`).
		WithArgs("CLINICA", "monthly", models.SubscriptionStatusActive, pgxmock.AnyArg(), pgxmock.AnyArg(), suite.subID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	result, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, &ChangePlanRequest{
		TargetPlan:      "CLINICA",
		BillingInterval: "monthly",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), ChangeKindSubscriptionUpgrade, result.Kind)
	assert.Empty(suite.T(), result.CheckoutURL)
	assert.NotNil(suite.T(), result.ProrationDate)

	// Half the monthly period remains, so half the price difference
	// between CLINICA (999) and PROFESIONAL (599) is charged.
	assert.InDelta(suite.T(), 200.0, result.ProrationAmount, 1.0)
	assert.Equal(suite.T(), 999.0, result.NewRecurringAmount)
}

func (suite *BillingServiceTestSuite) TestChangePlan_DowngradeIsNotBlocked() {
	providerID := "psub_42"
	periodEnd := time.Now().UTC().Add(15 * 24 * time.Hour)
	suite.expectSubscription(models.SubscriptionStatusActive, "CLINICA", "monthly", &periodEnd, &providerID)

	suite.paymentSvc.On("ChangeSubscriptionPlan", suite.ctx, "psub_42", "basico_monthly").Return(nil)
	suite.mock.ExpectExec(`UPDATE tenant_subscriptions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	result, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, &ChangePlanRequest{
		TargetPlan:      "BASICO",
		BillingInterval: "monthly",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), -2, result.TierChange)
	assert.Negative(suite.T(), result.ProrationAmount)
}

func (suite *BillingServiceTestSuite) TestChangePlan_RejectedOutsideTrialingAndActive() {
	for _, status := range []string{
		models.SubscriptionStatusCancelled,
		models.SubscriptionStatusExpired,
		models.SubscriptionStatusPastDue,
	} {
		suite.expectSubscription(status, "PROFESIONAL", "monthly", nil, nil)

		_, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, &ChangePlanRequest{
			TargetPlan:      "CLINICA",
			BillingInterval: "monthly",
		})
		assert.ErrorIs(suite.T(), err, ErrSubscriptionState)
	}
}

func (suite *BillingServiceTestSuite) TestChangePlan_UnknownTargetPlan() {
	_, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, &ChangePlanRequest{
		TargetPlan:      "GOLD",
		BillingInterval: "monthly",
	})
	assert.ErrorIs(suite.T(), err, ErrPlanNotFound)
}

func (suite *BillingServiceTestSuite) TestApplyWebhookEvent_CheckoutCompletedActivates() {
	trialEnd := time.Now().UTC().AddDate(0, 0, 5)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT .* FROM tenants WHERE id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows(tenantCols).AddRow(
			suite.tenantID, "Veterinaria Luna", "vet-luna",
			models.SubscriptionStatusTrialing, true, &trialEnd, "active",
			time.Now(), time.Now(),
		))
	suite.mock.ExpectQuery(`SELECT .* FROM tenant_subscriptions WHERE tenant_id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows(subscriptionCols).AddRow(
			suite.subID, suite.tenantID, "PROFESIONAL", "monthly",
			models.SubscriptionStatusTrialing, &trialEnd, (*string)(nil), time.Now(), time.Now(),
		))

	// Tenant flips to ACTIVE with the trial flags cleared.
	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs(models.SubscriptionStatusActive, false, pgxmock.AnyArg(), suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE tenant_subscriptions`).
		WithArgs("CLINICA", "yearly", models.SubscriptionStatusActive, pgxmock.AnyArg(), pgxmock.AnyArg(), suite.subID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.ApplyWebhookEvent(suite.ctx, &PaymentWebhookEvent{
		ID:             "evt_1",
		Type:           WebhookCheckoutCompleted,
		TenantID:       suite.tenantID.String(),
		SubscriptionID: "psub_99",
		PlanKey:        "CLINICA",
		Interval:       "yearly",
	})
	assert.NoError(suite.T(), err)
}

func (suite *BillingServiceTestSuite) TestApplyWebhookEvent_PaymentFailedMarksPastDue() {
	providerID := "psub_7"
	suite.mock.ExpectQuery(`SELECT .* FROM tenant_subscriptions WHERE provider_subscription_id = \$1`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows(subscriptionCols).AddRow(
			suite.subID, suite.tenantID, "PROFESIONAL", "monthly",
			models.SubscriptionStatusActive, (*time.Time)(nil), &providerID, time.Now(), time.Now(),
		))

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT .* FROM tenants WHERE id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows(tenantCols).AddRow(
			suite.tenantID, "Veterinaria Luna", "vet-luna",
			models.SubscriptionStatusActive, false, (*time.Time)(nil), "active",
			time.Now(), time.Now(),
		))
	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs(models.SubscriptionStatusPastDue, false, pgxmock.AnyArg(), suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE tenant_subscriptions`).
		WithArgs("PROFESIONAL", "monthly", models.SubscriptionStatusPastDue, pgxmock.AnyArg(), pgxmock.AnyArg(), suite.subID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.ApplyWebhookEvent(suite.ctx, &PaymentWebhookEvent{
		ID:             "evt_2",
		Type:           WebhookPaymentFailed,
		SubscriptionID: providerID,
	})
	assert.NoError(suite.T(), err)
}

func (suite *BillingServiceTestSuite) TestApplyWebhookEvent_UnknownTypeIsAcked() {
	err := suite.service.ApplyWebhookEvent(suite.ctx, &PaymentWebhookEvent{
		ID:   "evt_3",
		Type: "invoice.created",
	})
	assert.NoError(suite.T(), err)
}

func (suite *BillingServiceTestSuite) TestExpireOverdueTrials() {
	trialEnd := time.Now().UTC().AddDate(0, 0, -1)
	otherTenant := uuid.New()
	otherSub := uuid.New()

	suite.mock.ExpectQuery(`FROM tenants\s+WHERE subscription_status = \$1 AND trial_ends_at < NOW\(\)`).
		WithArgs(models.SubscriptionStatusTrialing).
		WillReturnRows(pgxmock.NewRows(tenantCols).
			AddRow(suite.tenantID, "Veterinaria Luna", "vet-luna",
				models.SubscriptionStatusTrialing, true, &trialEnd, "active", time.Now(), time.Now()).
			AddRow(otherTenant, "Veterinaria Sol", "vet-sol",
				models.SubscriptionStatusTrialing, true, &trialEnd, "active", time.Now(), time.Now()))

	for _, ids := range [][2]uuid.UUID{{suite.tenantID, suite.subID}, {otherTenant, otherSub}} {
		suite.mock.ExpectBegin()
		suite.mock.ExpectExec(`UPDATE tenants`).
			WithArgs(models.SubscriptionStatusExpired, false, pgxmock.AnyArg(), ids[0]).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		suite.mock.ExpectQuery(`SELECT .* FROM tenant_subscriptions WHERE tenant_id = \$1`).
			WithArgs(ids[0]).
			WillReturnRows(pgxmock.NewRows(subscriptionCols).AddRow(
				ids[1], ids[0], "PROFESIONAL", "monthly",
				models.SubscriptionStatusTrialing, &trialEnd, (*string)(nil), time.Now(), time.Now(),
			))
		suite.mock.ExpectExec(`UPDATE tenant_subscriptions`).
			WithArgs("PROFESIONAL", "monthly", models.SubscriptionStatusExpired, pgxmock.AnyArg(), pgxmock.AnyArg(), ids[1]).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		suite.mock.ExpectCommit()
	}

	expired, err := suite.service.ExpireOverdueTrials(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, expired)
}
