package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quotapay/quotapay/app/models"
)

func TestApplySettingsInput(t *testing.T) {
	settings := &models.UserSettings{
		UserID:             "user-1",
		Currency:           "USD",
		DefaultDeposit:     0.5,
		PlatformFeePercent: 5,
		SimplifiedUI:       true,
	}

	rate := 120.0
	deposit := 0.3
	simplified := false
	applySettingsInput(settings, &settingsInput{
		BusinessName:   "Ada Studio",
		Currency:       "ngn",
		BaseHourlyRate: &rate,
		DefaultDeposit: &deposit,
		SimplifiedUI:   &simplified,
	})

	assert.Equal(t, "Ada Studio", settings.BusinessName)
	assert.Equal(t, "NGN", settings.Currency)
	assert.Equal(t, 120.0, settings.BaseHourlyRate)
	assert.Equal(t, 0.3, settings.DefaultDeposit)
	assert.False(t, settings.SimplifiedUI)
	// Untouched fields keep their values.
	assert.Equal(t, 5.0, settings.PlatformFeePercent)
}

func TestApplySettingsInputEmptyIsNoop(t *testing.T) {
	settings := &models.UserSettings{UserID: "user-1", Currency: "EUR", DefaultDeposit: 0.4}
	applySettingsInput(settings, &settingsInput{})
	assert.Equal(t, "EUR", settings.Currency)
	assert.Equal(t, 0.4, settings.DefaultDeposit)
}
