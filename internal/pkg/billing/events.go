package billing

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EventKind enumerates every provider webhook event this system acts on.
// Applying an Event switches over this closed set exhaustively, so a new kind
// without a transition is a compile-visible gap rather than a silent branch.
type EventKind int

const (
	// EventIgnored marks a verified but non-actionable delivery; it is still
	// acknowledged with 200 so the provider stops retrying.
	EventIgnored EventKind = iota
	// EventDepositPaid is a completed payment-mode checkout session.
	EventDepositPaid
	// EventRetainerCheckoutCompleted is a completed subscription-mode session.
	EventRetainerCheckoutCompleted
	// EventRetainerInvoicePaid is a paid subscription invoice.
	EventRetainerInvoicePaid
	// EventRetainerInvoiceFailed is a failed subscription invoice payment.
	EventRetainerInvoiceFailed
	// EventRetainerCanceled is a deleted or canceled subscription.
	EventRetainerCanceled
)

// Event is the provider-neutral, already-verified webhook event.
type Event struct {
	Kind           EventKind
	QuoteID        string
	SessionID      string
	SubscriptionID string
	AmountPaid     float64
}

// VerifyStripePayload checks the stripe-signature header against the webhook
// secret and decodes the event. Any failure maps to ErrInvalidSignature.
func VerifyStripePayload(payload []byte, signatureHeader, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// ParseStripeEvent maps a verified Stripe event to the internal Event type.
// Events without a resolvable quote id come back as EventIgnored.
func ParseStripeEvent(event stripe.Event) (Event, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		quoteID := sess.Metadata["quoteId"]
		if quoteID == "" {
			return Event{Kind: EventIgnored}, nil
		}
		switch sess.Mode {
		case stripe.CheckoutSessionModePayment:
			return Event{Kind: EventDepositPaid, QuoteID: quoteID, SessionID: sess.ID}, nil
		case stripe.CheckoutSessionModeSubscription:
			return Event{Kind: EventRetainerCheckoutCompleted, QuoteID: quoteID, SessionID: sess.ID}, nil
		default:
			return Event{Kind: EventIgnored}, nil
		}

	case "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return Event{}, fmt.Errorf("decode invoice: %w", err)
		}
		quoteID := invoiceQuoteID(&inv)
		if quoteID == "" {
			return Event{Kind: EventIgnored}, nil
		}
		out := Event{Kind: EventRetainerInvoicePaid, QuoteID: quoteID}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
		if inv.AmountPaid > 0 {
			out.AmountPaid = float64(inv.AmountPaid) / 100
		}
		return out, nil

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return Event{}, fmt.Errorf("decode invoice: %w", err)
		}
		quoteID := invoiceQuoteID(&inv)
		if quoteID == "" {
			return Event{Kind: EventIgnored}, nil
		}
		return Event{Kind: EventRetainerInvoiceFailed, QuoteID: quoteID}, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		quoteID := sub.Metadata["quoteId"]
		if quoteID == "" {
			return Event{Kind: EventIgnored}, nil
		}
		return Event{Kind: EventRetainerCanceled, QuoteID: quoteID, SubscriptionID: sub.ID}, nil

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		quoteID := sub.Metadata["quoteId"]
		if quoteID == "" || sub.Status != stripe.SubscriptionStatusCanceled {
			return Event{Kind: EventIgnored}, nil
		}
		return Event{Kind: EventRetainerCanceled, QuoteID: quoteID, SubscriptionID: sub.ID}, nil

	default:
		return Event{Kind: EventIgnored}, nil
	}
}

// invoiceQuoteID resolves the quote id from subscription metadata first, then
// invoice metadata, matching where the retainer flow attaches it.
func invoiceQuoteID(inv *stripe.Invoice) string {
	if inv.SubscriptionDetails != nil {
		if id := inv.SubscriptionDetails.Metadata["quoteId"]; id != "" {
			return id
		}
	}
	return inv.Metadata["quoteId"]
}

// flutterwaveWebhook is the subset of the Flutterwave webhook payload we read.
type flutterwaveWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ID     json.Number       `json:"id"`
		TxRef  string            `json:"tx_ref"`
		Status string            `json:"status"`
		Meta   map[string]string `json:"meta"`
	} `json:"data"`
}

// ParseFlutterwaveEvent maps a verified Flutterwave webhook body to the
// internal Event type. Only completed charges are actionable.
func ParseFlutterwaveEvent(body []byte) (Event, error) {
	var payload flutterwaveWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, fmt.Errorf("decode flutterwave webhook: %w", err)
	}

	switch payload.Event {
	case "charge.completed", "payment.completed":
		quoteID := payload.Data.Meta["quoteId"]
		if quoteID == "" {
			return Event{Kind: EventIgnored}, nil
		}
		return Event{Kind: EventDepositPaid, QuoteID: quoteID, SessionID: payload.Data.TxRef}, nil
	default:
		return Event{Kind: EventIgnored}, nil
	}
}
