package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses shared by Tenant.SubscriptionStatus and
// TenantSubscription.Status. The two fields are always written together.
const (
	SubscriptionStatusTrialing  = "TRIALING"
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusPastDue   = "PAST_DUE"
	SubscriptionStatusCancelled = "CANCELLED"
	SubscriptionStatusExpired   = "EXPIRED"
)

type Tenant struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Slug               string     `json:"slug" db:"slug"`
	SubscriptionStatus string     `json:"subscription_status" db:"subscription_status"`
	IsTrialPeriod      bool       `json:"is_trial_period" db:"is_trial_period"`
	TrialEndsAt        *time.Time `json:"trial_ends_at" db:"trial_ends_at"`
	Status             string     `json:"status" db:"status"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}
