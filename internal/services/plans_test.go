package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanByKey(t *testing.T) {
	plan, err := PlanByKey("PROFESIONAL")
	assert.NoError(t, err)
	assert.Equal(t, "PROFESIONAL", plan.Key)
	assert.Equal(t, 1, plan.Tier)

	// Lookup is case-insensitive and trims whitespace
	plan, err = PlanByKey("  clinica ")
	assert.NoError(t, err)
	assert.Equal(t, "CLINICA", plan.Key)

	_, err = PlanByKey("GOLD")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = PlanByKey("")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestAvailablePlansIsACopy(t *testing.T) {
	plans := AvailablePlans()
	assert.Len(t, plans, 4)

	plans["BASICO"] = PlanConfig{Key: "BASICO", MonthlyPrice: 1.0}

	reread, err := PlanByKey("BASICO")
	assert.NoError(t, err)
	assert.Equal(t, 349.0, reread.MonthlyPrice)
}

func TestWithinLimit(t *testing.T) {
	tests := []struct {
		name  string
		usage int64
		limit int64
		want  bool
	}{
		{"below limit", 5, 10, true},
		{"at limit", 10, 10, false},
		{"above limit", 11, 10, false},
		{"unlimited always allows", 1 << 40, Unlimited, true},
		{"zero limit blocks everything", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinLimit(tt.usage, tt.limit))
		})
	}
}

func TestNormalizeInterval(t *testing.T) {
	got, err := NormalizeInterval("monthly")
	assert.NoError(t, err)
	assert.Equal(t, "monthly", got)

	got, err = NormalizeInterval("Yearly")
	assert.NoError(t, err)
	assert.Equal(t, "yearly", got)

	// Legacy alias still accepted from older clients
	got, err = NormalizeInterval("annual")
	assert.NoError(t, err)
	assert.Equal(t, "yearly", got)

	_, err = NormalizeInterval("weekly")
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NormalizeInterval("")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestPlanPrice(t *testing.T) {
	plan, err := PlanByKey("BASICO")
	assert.NoError(t, err)
	assert.Equal(t, plan.MonthlyPrice, plan.Price("monthly"))
	assert.Equal(t, plan.YearlyPrice, plan.Price("yearly"))
}
