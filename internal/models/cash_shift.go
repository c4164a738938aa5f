package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CashShiftStatusOpen   = "open"
	CashShiftStatusClosed = "closed"
)

// Reconciliation labels set when a shift is closed.
const (
	CashShiftBalanced = "balanced"
	CashShiftOver     = "over"
	CashShiftShort    = "short"
)

type CashShift struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	TenantID        uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	OpenedBy        uuid.UUID  `json:"opened_by" db:"opened_by"`
	OpeningBalance  float64    `json:"opening_balance" db:"opening_balance"`
	CashSales       float64    `json:"cash_sales" db:"cash_sales"`
	CardSales       float64    `json:"card_sales" db:"card_sales"`
	Withdrawals     float64    `json:"withdrawals" db:"withdrawals"`
	ExpectedBalance *float64   `json:"expected_balance" db:"expected_balance"`
	CountedBalance  *float64   `json:"counted_balance" db:"counted_balance"`
	Difference      *float64   `json:"difference" db:"difference"`
	Reconciliation  *string    `json:"reconciliation" db:"reconciliation"`
	Status          string     `json:"status" db:"status"`
	ReceiptURL      *string    `json:"receipt_url" db:"receipt_url"`
	OpenedAt        time.Time  `json:"opened_at" db:"opened_at"`
	ClosedAt        *time.Time `json:"closed_at" db:"closed_at"`
}
