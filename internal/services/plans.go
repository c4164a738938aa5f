package services

import (
	"strings"

	"vetly/internal/models"
)

// Unlimited is the sentinel limit value meaning no cap on a resource.
const Unlimited int64 = -1

// TrialDays is the fixed length of the free trial started at provisioning.
const TrialDays = 30

// DefaultPlanKey is the plan assigned when signup does not specify one.
const DefaultPlanKey = "PROFESIONAL"

// PlanLimits holds the per-resource caps of a plan. -1 means unlimited.
type PlanLimits struct {
	MaxPets             int64 `json:"max_pets"`
	MaxUsers            int64 `json:"max_users"`
	MaxStorageGB        int64 `json:"max_storage_gb"`
	MaxCashRegisters    int64 `json:"max_cash_registers"`
	MaxWhatsAppMessages int64 `json:"max_whatsapp_messages"`
}

// PlanConfig is an immutable catalog entry. Tier ranks plans for
// upgrade/downgrade comparison; it never gates a change on its own.
type PlanConfig struct {
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Tier         int        `json:"tier"`
	MonthlyPrice float64    `json:"monthly_price"`
	YearlyPrice  float64    `json:"yearly_price"`
	Currency     string     `json:"currency"`
	Limits       PlanLimits `json:"limits"`
}

var planCatalog = map[string]PlanConfig{
	"BASICO": {
		Key:          "BASICO",
		Name:         "Básico",
		Description:  "Essential tools for a single-vet practice",
		Tier:         0,
		MonthlyPrice: 349.0,
		YearlyPrice:  3490.0,
		Currency:     "MXN",
		Limits: PlanLimits{
			MaxPets:             100,
			MaxUsers:            2,
			MaxStorageGB:        1,
			MaxCashRegisters:    1,
			MaxWhatsAppMessages: 50,
		},
	},
	"PROFESIONAL": {
		Key:          "PROFESIONAL",
		Name:         "Profesional",
		Description:  "Full scheduling, records and point of sale",
		Tier:         1,
		MonthlyPrice: 599.0,
		YearlyPrice:  5990.0,
		Currency:     "MXN",
		Limits: PlanLimits{
			MaxPets:             500,
			MaxUsers:            5,
			MaxStorageGB:        5,
			MaxCashRegisters:    2,
			MaxWhatsAppMessages: Unlimited,
		},
	},
	"CLINICA": {
		Key:          "CLINICA",
		Name:         "Clínica",
		Description:  "Multi-vet clinics with several cash registers",
		Tier:         2,
		MonthlyPrice: 999.0,
		YearlyPrice:  9990.0,
		Currency:     "MXN",
		Limits: PlanLimits{
			MaxPets:             2000,
			MaxUsers:            15,
			MaxStorageGB:        20,
			MaxCashRegisters:    5,
			MaxWhatsAppMessages: Unlimited,
		},
	},
	"EMPRESA": {
		Key:          "EMPRESA",
		Name:         "Empresa",
		Description:  "Unlimited everything for clinic chains",
		Tier:         3,
		MonthlyPrice: 1999.0,
		YearlyPrice:  19990.0,
		Currency:     "MXN",
		Limits: PlanLimits{
			MaxPets:             Unlimited,
			MaxUsers:            Unlimited,
			MaxStorageGB:        Unlimited,
			MaxCashRegisters:    Unlimited,
			MaxWhatsAppMessages: Unlimited,
		},
	},
}

// PlanByKey resolves a catalog entry. Returns ErrPlanNotFound for unknown keys.
func PlanByKey(key string) (PlanConfig, error) {
	plan, ok := planCatalog[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return PlanConfig{}, ErrPlanNotFound
	}
	return plan, nil
}

// AvailablePlans returns a copy of the catalog to prevent external modifications.
func AvailablePlans() map[string]PlanConfig {
	result := make(map[string]PlanConfig, len(planCatalog))
	for k, v := range planCatalog {
		result[k] = v
	}
	return result
}

// Price returns the recurring price for the given billing interval.
func (p PlanConfig) Price(interval string) float64 {
	if interval == models.BillingIntervalYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// WithinLimit reports whether one more unit of a resource is allowed.
// A limit of Unlimited (-1) always permits; otherwise usage must be
// strictly below the limit.
func WithinLimit(usage, limit int64) bool {
	if limit == Unlimited {
		return true
	}
	return usage < limit
}

// NormalizeInterval maps the public interval spellings onto the stored
// ones ("annual" arrives from the upgrade endpoint, "yearly" everywhere
// else). Unknown values return ErrInvalidInterval.
func NormalizeInterval(interval string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case models.BillingIntervalMonthly:
		return models.BillingIntervalMonthly, nil
	case models.BillingIntervalYearly, "annual":
		return models.BillingIntervalYearly, nil
	default:
		return "", ErrInvalidInterval
	}
}
