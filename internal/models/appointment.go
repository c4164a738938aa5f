package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PetID          uuid.UUID `json:"pet_id" db:"pet_id"`
	VeterinarianID uuid.UUID `json:"veterinarian_id" db:"veterinarian_id"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time `json:"ends_at" db:"ends_at"`
	Reason         string    `json:"reason" db:"reason"`
	Status         string    `json:"status" db:"status"`
	ReminderSent   bool      `json:"reminder_sent" db:"reminder_sent"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
