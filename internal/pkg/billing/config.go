package billing

import (
	"strings"

	"github.com/quotapay/quotapay/app/models"
)

// SellerConfig is the fully-defaulted per-seller configuration used by the
// checkout and retainer flows. It replaces scattered nil-checks with a single
// resolution point.
type SellerConfig struct {
	Currency                string
	PlatformFeePercent      float64
	PreferredProvider       string
	FlutterwaveSubaccountID string
	DefaultDeposit          float64
}

// ResolveSellerConfig derives a SellerConfig from stored settings, which may
// be nil for sellers who never opened the settings page.
func ResolveSellerConfig(settings *models.UserSettings) SellerConfig {
	cfg := SellerConfig{
		Currency:           "USD",
		PlatformFeePercent: models.DefaultPlatformFeePercent,
		DefaultDeposit:     0.5,
	}
	if settings == nil {
		return cfg
	}

	if c := strings.ToUpper(strings.TrimSpace(settings.Currency)); len(c) == 3 {
		cfg.Currency = c
	}
	if settings.PlatformFeePercent > 0 && settings.PlatformFeePercent <= 100 {
		cfg.PlatformFeePercent = settings.PlatformFeePercent
	}
	if settings.DefaultDeposit > 0 && settings.DefaultDeposit <= 1 {
		cfg.DefaultDeposit = settings.DefaultDeposit
	}
	cfg.PreferredProvider = settings.PreferredProvider
	cfg.FlutterwaveSubaccountID = settings.FlutterwaveSubaccountID
	return cfg
}

// ResolveCurrency picks the charge currency: quote currency first, then the
// seller default, then USD. Upper-cased for provider APIs.
func ResolveCurrency(quote *models.Quote, cfg SellerConfig) string {
	if quote != nil && strings.TrimSpace(quote.Currency) != "" {
		return strings.ToUpper(strings.TrimSpace(quote.Currency))
	}
	return cfg.Currency
}
