package payments

import "context"

// Session is a provider-hosted checkout session: the reference stored locally
// and the URL the buyer is redirected to.
type Session struct {
	ID  string
	URL string
}

// StripeCheckoutParams describe a one-time deposit charge with a platform fee
// carved out and the remainder transferred to the seller's connected account.
type StripeCheckoutParams struct {
	Amount             float64
	Currency           string
	Title              string
	DestinationAccount string
	ApplicationFee     float64
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// StripeSubscriptionParams describe a monthly retainer subscription. Unlike
// one-time checkout the platform fee is a percentage, not a fixed amount.
type StripeSubscriptionParams struct {
	MonthlyAmount         float64
	Currency              string
	ProductName           string
	DestinationAccount    string
	ApplicationFeePercent float64
	SuccessURL            string
	CancelURL             string
	Metadata              map[string]string
}

// StripeGateway is the slice of the Stripe API the billing core consumes.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, p StripeCheckoutParams) (*Session, error)
	CreateSubscriptionSession(ctx context.Context, p StripeSubscriptionParams) (*Session, error)
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
}

// FlutterwavePaymentParams describe a one-time payment initiation. When
// SubaccountID is set the rail splits the charge so the seller receives
// SellerSharePercent and the platform keeps the rest.
type FlutterwavePaymentParams struct {
	TxRef              string
	Amount             float64
	Currency           string
	RedirectURL        string
	CustomerEmail      string
	CustomerName       string
	Title              string
	Meta               map[string]string
	SubaccountID       string
	SellerSharePercent float64
}

// SubaccountParams register a seller payout destination with Flutterwave.
type SubaccountParams struct {
	AccountNumber    string
	AccountBank      string
	BusinessName     string
	PercentageCharge float64
}

// FlutterwaveGateway is the slice of the Flutterwave v3 API the billing core
// consumes. Recurring billing is intentionally absent; retainers are Stripe
// only in this implementation.
type FlutterwaveGateway interface {
	InitiatePayment(ctx context.Context, p FlutterwavePaymentParams) (*Session, error)
	CreateSubaccount(ctx context.Context, p SubaccountParams) (string, error)
}
