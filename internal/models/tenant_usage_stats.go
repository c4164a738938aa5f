package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantUsageStats tracks the counters checked against plan limits.
// Feature code increments these as resources are created.
type TenantUsageStats struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	TenantID             uuid.UUID `json:"tenant_id" db:"tenant_id"`
	TotalUsers           int64     `json:"total_users" db:"total_users"`
	TotalPets            int64     `json:"total_pets" db:"total_pets"`
	TotalCashRegisters   int64     `json:"total_cash_registers" db:"total_cash_registers"`
	StorageUsedMB        int64     `json:"storage_used_mb" db:"storage_used_mb"`
	WhatsAppMessagesSent int64     `json:"whatsapp_messages_sent" db:"whatsapp_messages_sent"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
