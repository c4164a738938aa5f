package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Sale is a point-of-sale transaction registered against an open cash shift.
type Sale struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	CashShiftID   uuid.UUID `json:"cash_shift_id" db:"cash_shift_id"`
	Description   string    `json:"description" db:"description"`
	Amount        float64   `json:"amount" db:"amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
