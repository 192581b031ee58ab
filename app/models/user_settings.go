package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment provider constants shared across models and the billing core.
const (
	PaymentProviderStripe      = "stripe"
	PaymentProviderFlutterwave = "flutterwave"
)

// DefaultPlatformFeePercent is the platform cut applied when a seller has not
// configured their own fee percentage.
const DefaultPlatformFeePercent = 5.0

// UserSettings stores per-seller configuration: pricing defaults, currency and
// payout rail preferences.
type UserSettings struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	UserID                  string         `gorm:"type:varchar(64);uniqueIndex" json:"user_id"`
	UserType                string         `gorm:"type:varchar(50);default:''" json:"user_type"`
	JobType                 string         `gorm:"type:varchar(100);default:''" json:"job_type"`
	BusinessName            string         `gorm:"type:varchar(200);default:''" json:"business_name"`
	Currency                string         `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	BaseHourlyRate          float64        `gorm:"default:0" json:"base_hourly_rate"`
	MinHourlyRate           float64        `gorm:"default:0" json:"min_hourly_rate"`
	DefaultDeposit          float64        `gorm:"default:0.5" json:"default_deposit"`
	PlatformFeePercent      float64        `gorm:"default:5" json:"platform_fee_percent"`
	PreferredProvider       string         `gorm:"type:varchar(20);default:''" json:"preferred_provider"`
	FlutterwaveSubaccountID string         `gorm:"type:varchar(64);default:''" json:"flutterwave_subaccount_id"`
	SimplifiedUI            bool           `gorm:"default:false" json:"simplified_ui"`
	OnboardingComplete      bool           `gorm:"default:false" json:"onboarding_complete"`
	CreatedAt               time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserSettings returns existing settings or creates defaults.
func GetOrCreateUserSettings(db *gorm.DB, userID string) (*UserSettings, error) {
	var us UserSettings
	if err := db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			us = UserSettings{UserID: userID, Currency: "USD", DefaultDeposit: 0.5, PlatformFeePercent: DefaultPlatformFeePercent}
			if err := db.Create(&us).Error; err != nil {
				return nil, err
			}
			return &us, nil
		}
		return nil, err
	}
	return &us, nil
}
