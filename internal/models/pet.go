package models

import (
	"time"

	"github.com/google/uuid"
)

type Pet struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name       string     `json:"name" db:"name"`
	Species    string     `json:"species" db:"species"`
	Breed      *string    `json:"breed" db:"breed"`
	OwnerName  string     `json:"owner_name" db:"owner_name"`
	OwnerPhone *string    `json:"owner_phone" db:"owner_phone"`
	BirthDate  *time.Time `json:"birth_date" db:"birth_date"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
