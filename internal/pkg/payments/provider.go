// Package payments holds the payment-rail clients and provider routing. The
// clients are constructed once at process start and passed in; nothing in
// this package reads configuration lazily at call time.
package payments

import (
	"strings"

	"github.com/quotapay/quotapay/app/models"
)

// Currencies routed to Flutterwave when the seller has no explicit preference.
var flutterwaveCurrencies = map[string]struct{}{
	"ngn": {},
	"zar": {},
	"kes": {},
	"ghs": {},
}

// SelectProvider picks the payment rail for a quote. Seller preference wins
// if set to flutterwave; otherwise the quote currency decides, falling back
// to the seller's default currency and finally USD. Always resolves.
func SelectProvider(settings *models.UserSettings, quote *models.Quote) string {
	if settings != nil && settings.PreferredProvider == models.PaymentProviderFlutterwave {
		return models.PaymentProviderFlutterwave
	}

	currency := ""
	if quote != nil {
		currency = quote.Currency
	}
	if currency == "" && settings != nil {
		currency = settings.Currency
	}
	if currency == "" {
		currency = "USD"
	}

	if _, ok := flutterwaveCurrencies[strings.ToLower(currency)]; ok {
		return models.PaymentProviderFlutterwave
	}
	return models.PaymentProviderStripe
}
