package models

import (
	"time"

	"github.com/google/uuid"
)

// Default role keys seeded for every new tenant.
const (
	RoleAdmin        = "admin"
	RoleVeterinarian = "veterinarian"
	RoleAssistant    = "assistant"
)

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Key         string    `json:"key" db:"key"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
