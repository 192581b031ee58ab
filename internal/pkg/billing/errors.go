package billing

import "errors"

// Sentinel errors forming the payment-flow taxonomy. Controllers map these to
// HTTP statuses; none are retried automatically.
var (
	ErrValidation           = errors.New("invalid request")
	ErrNotFound             = errors.New("quote not found")
	ErrSellerNotOnboarded   = errors.New("seller has not set up payouts yet")
	ErrProviderUnconfigured = errors.New("payment provider is not configured")
	ErrProviderError        = errors.New("payment provider call failed")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)
