package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing intervals accepted by the subscription endpoints. The public
// upgrade API also accepts "annual", which is normalized to yearly before
// it reaches this layer.
const (
	BillingIntervalMonthly = "monthly"
	BillingIntervalYearly  = "yearly"
)

type TenantSubscription struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	TenantID               uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PlanKey                string     `json:"plan_key" db:"plan_key"`
	BillingInterval        string     `json:"billing_interval" db:"billing_interval"`
	Status                 string     `json:"status" db:"status"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end" db:"current_period_end"`
	ProviderSubscriptionID *string    `json:"provider_subscription_id" db:"provider_subscription_id"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}
