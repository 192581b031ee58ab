package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
)

// StripeClient implements StripeGateway over an explicitly constructed
// stripe-go client handle; its lifecycle is owned by the process entry point.
type StripeClient struct {
	api *stripeclient.API
}

// NewStripeClient builds a client for the given secret key.
func NewStripeClient(secretKey string) (*StripeClient, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}, nil
}

// CreateCheckoutSession creates a one-time payment-mode checkout session with
// an application fee routed to the platform and the remainder transferred to
// the seller's connected account.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p StripeCheckoutParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%s (Deposit)", p.Title)),
						Description: stripe.String(fmt.Sprintf("Deposit for %s", p.Title)),
					},
					UnitAmount: stripe.Int64(toMinorUnits(p.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(toMinorUnits(p.ApplicationFee)),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// CreateSubscriptionSession creates a monthly subscription-mode checkout
// session for a retainer. Metadata is attached both to the session and the
// resulting subscription so invoice webhooks can correlate the quote.
func (c *StripeClient) CreateSubscriptionSession(ctx context.Context, p StripeSubscriptionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
					UnitAmount: stripe.Int64(toMinorUnits(p.MonthlyAmount)),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			ApplicationFeePercent: stripe.Float64(p.ApplicationFeePercent),
			TransferData: &stripe.CheckoutSessionSubscriptionDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
			Metadata: p.Metadata,
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("type", "retainer")

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// CreateExpressAccount creates a Stripe Express connected account for payouts.
func (c *StripeClient) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String("US"),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx

	acct, err := c.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account create: %w", err)
	}
	return acct.ID, nil
}

// CreateAccountLink creates a hosted onboarding link for a connected account.
func (c *StripeClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := c.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account link: %w", err)
	}
	return link.URL, nil
}

// toMinorUnits converts a major-unit amount to the cent amount Stripe expects.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
