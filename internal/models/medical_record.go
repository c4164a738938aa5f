package models

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PetID         uuid.UUID  `json:"pet_id" db:"pet_id"`
	VeterinarianID uuid.UUID `json:"veterinarian_id" db:"veterinarian_id"`
	Diagnosis     string     `json:"diagnosis" db:"diagnosis"`
	Treatment     *string    `json:"treatment" db:"treatment"`
	WeightKg      *float64   `json:"weight_kg" db:"weight_kg"`
	Vaccinations  *string    `json:"vaccinations" db:"vaccinations"`
	AttachmentURL *string    `json:"attachment_url" db:"attachment_url"`
	VisitedAt     time.Time  `json:"visited_at" db:"visited_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
