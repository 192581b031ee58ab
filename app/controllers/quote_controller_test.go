package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quotapay/quotapay/internal/pkg/pricing"
)

func TestBuildPricing(t *testing.T) {
	packages, plans := buildPricing("q-1", nil, nil, 1000)

	assert.Len(t, packages, 3)
	recommended := 0
	for _, p := range packages {
		assert.Equal(t, "q-1", p.QuoteID)
		assert.NotEmpty(t, p.ID)
		if p.IsRecommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)

	assert.Len(t, plans, 3)
	for _, p := range plans {
		assert.Equal(t, "q-1", p.QuoteID)
		assert.LessOrEqual(t, p.Deposit, p.Total)
	}
	// Plans are derived from the recommended tier (1400), not the raw total.
	assert.Equal(t, float64(1400), plans[0].Total)
	assert.Equal(t, float64(420), plans[0].Deposit)
	assert.Equal(t, float64(1330), plans[2].Total)
}

func TestBuildPricingZeroTotalFallsBack(t *testing.T) {
	packages, _ := buildPricing("q-1", nil, nil, 0)
	assert.Len(t, packages, 3)
	assert.Equal(t, float64(500), packages[0].Price)
}

func TestBuildPricingKeepsSubmittedTiers(t *testing.T) {
	drafts := []pricing.PackageDraft{
		{Name: "Basic", Price: 800},
		{Name: "Standard", Price: 1200, IsRecommended: true},
		{Name: "Premium", Price: 2000},
	}
	packages, plans := buildPricing("q-1", drafts, nil, 800)

	assert.Equal(t, "Standard", packages[1].Name)
	assert.True(t, packages[1].IsRecommended)
	// Balanced plan: half the recommended tier.
	assert.Equal(t, float64(600), plans[1].Deposit)
	assert.Equal(t, float64(1200), plans[1].Total)
}
