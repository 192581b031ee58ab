package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/quotapay/quotapay/app/models"
	"github.com/quotapay/quotapay/internal/pkg/payments"
	"gorm.io/gorm"
)

// minimumCharge is the hard floor (in major currency units) applied to every
// deposit so the session clears both rails' minimum-charge constraints.
const minimumCharge = 50.0

// minimumRetainer is the smallest accepted monthly retainer amount.
const minimumRetainer = 5.0

// URLConfig holds the redirect targets for hosted checkout pages. The
// {slug} placeholder is substituted per quote.
type URLConfig struct {
	SuccessURLTemplate string
	CancelURLTemplate  string
}

// DefaultURLConfig builds redirect templates from the public base URL.
func DefaultURLConfig(baseURL string) URLConfig {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return URLConfig{
		SuccessURLTemplate: base + "/q/success?slug={slug}",
		CancelURLTemplate:  base + "/q/cancel?slug={slug}",
	}
}

func (u URLConfig) successURL(slug string) string {
	return strings.ReplaceAll(u.SuccessURLTemplate, "{slug}", slug)
}

func (u URLConfig) cancelURL(slug string) string {
	return strings.ReplaceAll(u.CancelURLTemplate, "{slug}", slug)
}

// Service orchestrates checkout sessions, retainer subscriptions and webhook
// state transitions. Rail clients are injected; a nil gateway means that rail
// is unconfigured for this deployment.
type Service struct {
	repo   Repository
	stripe payments.StripeGateway
	flw    payments.FlutterwaveGateway
	urls   URLConfig
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, stripe payments.StripeGateway, flw payments.FlutterwaveGateway, urls URLConfig) *Service {
	return &Service{repo: repo, stripe: stripe, flw: flw, urls: urls}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, stripe payments.StripeGateway, flw payments.FlutterwaveGateway, urls URLConfig) *Service {
	return NewService(NewRepository(db), stripe, flw, urls)
}

// CheckoutResult reports the created session back to the caller.
type CheckoutResult struct {
	URL      string
	Provider string
	PayToday float64
}

// BeginCheckout creates a one-time deposit session for the quote identified
// by slug, on the rail resolved from seller settings and quote currency.
func (s *Service) BeginCheckout(ctx context.Context, slug, packageID, planID string) (*CheckoutResult, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: missing slug", ErrValidation)
	}

	quote, err := s.repo.GetQuoteBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seller, err := s.repo.GetUser(quote.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !seller.HasStripeAccount() {
		return nil, ErrSellerNotOnboarded
	}

	settings := s.sellerSettings(quote.UserID)
	cfg := ResolveSellerConfig(settings)
	provider := payments.SelectProvider(settings, quote)

	pkg := resolvePackage(quote.Packages, packageID)
	plan := resolvePlan(quote.PaymentPlans, planID)

	baseTotal := quote.TotalAmount
	if pkg != nil {
		baseTotal = pkg.Price
	}
	payToday := computePayToday(plan, baseTotal)
	currency := ResolveCurrency(quote, cfg)

	meta := map[string]string{
		"quoteId": quote.ID,
		"slug":    quote.Slug,
	}
	if pkg != nil {
		meta["packageId"] = pkg.ID
	}
	if plan != nil {
		meta["planId"] = plan.ID
	}

	var session *payments.Session
	switch provider {
	case models.PaymentProviderFlutterwave:
		if s.flw == nil {
			return nil, fmt.Errorf("%w: flutterwave", ErrProviderUnconfigured)
		}
		params := payments.FlutterwavePaymentParams{
			TxRef:        fmt.Sprintf("%s-%d", quote.Slug, time.Now().UnixMilli()),
			Amount:       payToday,
			Currency:     currency,
			RedirectURL:  s.urls.successURL(quote.Slug),
			CustomerName: quote.ClientName,
			Title:        quote.ProjectTitle,
			Meta:         meta,
		}
		if cfg.FlutterwaveSubaccountID != "" {
			params.SubaccountID = cfg.FlutterwaveSubaccountID
			params.SellerSharePercent = 100 - cfg.PlatformFeePercent
		}
		session, err = s.flw.InitiatePayment(ctx, params)
	default:
		if s.stripe == nil {
			return nil, fmt.Errorf("%w: stripe", ErrProviderUnconfigured)
		}
		session, err = s.stripe.CreateCheckoutSession(ctx, payments.StripeCheckoutParams{
			Amount:             payToday,
			Currency:           currency,
			Title:              quote.ProjectTitle,
			DestinationAccount: seller.StripeAccountID,
			ApplicationFee:     math.Round(payToday * cfg.PlatformFeePercent / 100),
			SuccessURL:         s.urls.successURL(quote.Slug),
			CancelURL:          s.urls.cancelURL(quote.Slug),
			Metadata:           meta,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if err := s.repo.CreatePayment(&models.Payment{
		QuoteID:           quote.ID,
		Amount:            payToday,
		Status:            models.PaymentStatusPending,
		ProviderSessionID: session.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.SetQuoteProviderReference(quote.ID, provider, session.ID); err != nil {
		return nil, err
	}

	return &CheckoutResult{URL: session.URL, Provider: provider, PayToday: payToday}, nil
}

// BeginRetainer creates a monthly subscription session for the quote. Only
// Stripe supports retainers here; Flutterwave recurring billing is not
// implemented, which is a documented asymmetry rather than an oversight.
func (s *Service) BeginRetainer(ctx context.Context, slug string, monthlyAmount float64, description string) (*CheckoutResult, error) {
	if strings.TrimSpace(slug) == "" || monthlyAmount < minimumRetainer {
		return nil, fmt.Errorf("%w: missing slug or invalid amount", ErrValidation)
	}

	quote, err := s.repo.GetQuoteBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seller, err := s.repo.GetUser(quote.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !seller.HasStripeAccount() {
		return nil, ErrSellerNotOnboarded
	}
	if s.stripe == nil {
		return nil, fmt.Errorf("%w: stripe", ErrProviderUnconfigured)
	}

	cfg := ResolveSellerConfig(s.sellerSettings(quote.UserID))

	productName := description
	if productName == "" {
		productName = quote.ProjectTitle + " Retainer"
	}

	session, err := s.stripe.CreateSubscriptionSession(ctx, payments.StripeSubscriptionParams{
		MonthlyAmount:         monthlyAmount,
		Currency:              cfg.Currency,
		ProductName:           productName,
		DestinationAccount:    seller.StripeAccountID,
		ApplicationFeePercent: cfg.PlatformFeePercent,
		SuccessURL:            s.urls.successURL(quote.Slug),
		CancelURL:             s.urls.cancelURL(quote.Slug),
		Metadata: map[string]string{
			"quoteId": quote.ID,
			"slug":    quote.Slug,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if err := s.repo.SetRetainerPending(quote.ID, monthlyAmount); err != nil {
		return nil, err
	}

	return &CheckoutResult{URL: session.URL, Provider: models.PaymentProviderStripe, PayToday: monthlyAmount}, nil
}

// ApplyEvent applies a verified webhook event's status transition. Terminal
// states hold until a further verified event arrives; every write is keyed by
// immutable identifiers so duplicate deliveries are no-ops.
func (s *Service) ApplyEvent(ctx context.Context, ev Event) error {
	_ = ctx
	switch ev.Kind {
	case EventIgnored:
		log.Printf("billing: ignoring non-actionable webhook event")
		return nil
	case EventDepositPaid:
		if ev.SessionID != "" {
			if err := s.repo.MarkPaymentsPaid(ev.SessionID); err != nil {
				return err
			}
		}
		return s.repo.SetQuoteStatus(ev.QuoteID, models.QuoteStatusPaid)
	case EventRetainerCheckoutCompleted:
		return s.repo.SetRetainerStatus(ev.QuoteID, models.RetainerStatusPending)
	case EventRetainerInvoicePaid:
		return s.repo.ActivateRetainer(ev.QuoteID, ev.SubscriptionID, ev.AmountPaid)
	case EventRetainerInvoiceFailed:
		return s.repo.SetRetainerStatus(ev.QuoteID, models.RetainerStatusPastDue)
	case EventRetainerCanceled:
		return s.repo.SetRetainerStatus(ev.QuoteID, models.RetainerStatusCanceled)
	default:
		return fmt.Errorf("unhandled billing event kind %d", ev.Kind)
	}
}

// sellerSettings loads settings, tolerating sellers who never saved any.
func (s *Service) sellerSettings(userID string) *models.UserSettings {
	settings, err := s.repo.GetUserSettings(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: failed to load settings for user %s: %v", userID, err)
		}
		return nil
	}
	return settings
}

// resolvePackage picks the explicit package, else the recommended one, else
// the first.
func resolvePackage(pkgs []models.QuotePackage, packageID string) *models.QuotePackage {
	if len(pkgs) == 0 {
		return nil
	}
	if packageID != "" {
		for i := range pkgs {
			if pkgs[i].ID == packageID {
				return &pkgs[i]
			}
		}
	}
	for i := range pkgs {
		if pkgs[i].IsRecommended {
			return &pkgs[i]
		}
	}
	return &pkgs[0]
}

// resolvePlan picks the explicit plan, else the second ("balanced"), else the
// first.
func resolvePlan(plans []models.PaymentPlan, planID string) *models.PaymentPlan {
	if len(plans) == 0 {
		return nil
	}
	if planID != "" {
		for i := range plans {
			if plans[i].ID == planID {
				return &plans[i]
			}
		}
	}
	if len(plans) > 1 {
		return &plans[1]
	}
	return &plans[0]
}

// computePayToday derives the amount due now: the plan deposit when a plan
// exists, otherwise half the package price, never below the minimum charge.
func computePayToday(plan *models.PaymentPlan, baseTotal float64) float64 {
	payToday := math.Round(baseTotal * 0.5)
	if plan != nil {
		payToday = plan.Deposit
	}
	return math.Max(payToday, minimumCharge)
}
