package models

import (
	"time"

	"github.com/google/uuid"
)

type TenantSettings struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TenantID         uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Timezone         string    `json:"timezone" db:"timezone"`
	Currency         string    `json:"currency" db:"currency"`
	AppointmentSlots int       `json:"appointment_slots" db:"appointment_slot_minutes"`
	RemindersEnabled bool      `json:"reminders_enabled" db:"reminders_enabled"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
