package billing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/quotapay/quotapay/app/models"
	"github.com/quotapay/quotapay/internal/pkg/payments"
)

type fakeRepo struct {
	quotes   map[string]*models.Quote
	users    map[string]*models.User
	settings map[string]*models.UserSettings
	payments []*models.Payment

	statusWrites   []string
	retainerWrites []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotes:   map[string]*models.Quote{},
		users:    map[string]*models.User{},
		settings: map[string]*models.UserSettings{},
	}
}

func (f *fakeRepo) GetQuoteBySlug(slug string) (*models.Quote, error) {
	q, ok := f.quotes[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeRepo) GetUser(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetUserSettings(userID string) (*models.UserSettings, error) {
	s, ok := f.settings[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeRepo) CreatePayment(p *models.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeRepo) SetQuoteProviderReference(quoteID, provider, reference string) error {
	for _, q := range f.quotes {
		if q.ID == quoteID {
			q.PaymentProvider = provider
			q.ProviderReference = reference
		}
	}
	return nil
}

func (f *fakeRepo) MarkPaymentsPaid(providerSessionID string) error {
	for _, p := range f.payments {
		if p.ProviderSessionID == providerSessionID {
			p.Status = models.PaymentStatusPaid
		}
	}
	return nil
}

func (f *fakeRepo) SetQuoteStatus(quoteID, status string) error {
	f.statusWrites = append(f.statusWrites, status)
	for _, q := range f.quotes {
		if q.ID == quoteID {
			q.Status = status
		}
	}
	return nil
}

func (f *fakeRepo) SetRetainerPending(quoteID string, amount float64) error {
	for _, q := range f.quotes {
		if q.ID == quoteID {
			q.RetainerStatus = models.RetainerStatusPending
			q.RetainerAmount = amount
		}
	}
	return nil
}

func (f *fakeRepo) ActivateRetainer(quoteID, subscriptionID string, amountPaid float64) error {
	for _, q := range f.quotes {
		if q.ID == quoteID {
			q.Status = models.QuoteStatusPaid
			q.RetainerStatus = models.RetainerStatusActive
			if subscriptionID != "" {
				q.RetainerSubscriptionID = subscriptionID
			}
			if amountPaid > 0 {
				q.RetainerAmount = amountPaid
			}
		}
	}
	return nil
}

func (f *fakeRepo) SetRetainerStatus(quoteID, status string) error {
	f.retainerWrites = append(f.retainerWrites, status)
	for _, q := range f.quotes {
		if q.ID == quoteID {
			q.RetainerStatus = status
		}
	}
	return nil
}

type fakeStripe struct {
	lastCheckout     *payments.StripeCheckoutParams
	lastSubscription *payments.StripeSubscriptionParams
	err              error
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, p payments.StripeCheckoutParams) (*payments.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCheckout = &p
	return &payments.Session{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
}

func (f *fakeStripe) CreateSubscriptionSession(_ context.Context, p payments.StripeSubscriptionParams) (*payments.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastSubscription = &p
	return &payments.Session{ID: "cs_sub_456", URL: "https://checkout.stripe.test/cs_sub_456"}, nil
}

func (f *fakeStripe) CreateExpressAccount(context.Context, string) (string, error) {
	return "acct_test", nil
}

func (f *fakeStripe) CreateAccountLink(context.Context, string, string, string) (string, error) {
	return "https://connect.stripe.test/onboard", nil
}

type fakeFlutterwave struct {
	last *payments.FlutterwavePaymentParams
}

func (f *fakeFlutterwave) InitiatePayment(_ context.Context, p payments.FlutterwavePaymentParams) (*payments.Session, error) {
	f.last = &p
	return &payments.Session{ID: p.TxRef, URL: "https://checkout.flutterwave.test/" + p.TxRef}, nil
}

func (f *fakeFlutterwave) CreateSubaccount(context.Context, payments.SubaccountParams) (string, error) {
	return "RS_TEST", nil
}

func seedQuote(repo *fakeRepo) *models.Quote {
	q := &models.Quote{
		ID:           "q-1",
		UserID:       "user-1",
		Slug:         "abc12345",
		Status:       models.QuoteStatusSent,
		ProjectTitle: "Website Redesign",
		TotalAmount:  1000,
	}
	repo.quotes[q.Slug] = q
	repo.users["user-1"] = &models.User{ID: "user-1", StripeAccountID: "acct_seller"}
	return q
}

func TestBeginCheckoutStripeDefaults(t *testing.T) {
	repo := newFakeRepo()
	seedQuote(repo)
	gw := &fakeStripe{}
	svc := NewService(repo, gw, &fakeFlutterwave{}, DefaultURLConfig("https://quotapay.test"))

	res, err := svc.BeginCheckout(context.Background(), "abc12345", "", "")
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if res.Provider != models.PaymentProviderStripe {
		t.Fatalf("provider = %q, want stripe", res.Provider)
	}
	// No plan: half the total.
	if res.PayToday != 500 {
		t.Fatalf("payToday = %v, want 500", res.PayToday)
	}
	if gw.lastCheckout == nil {
		t.Fatal("stripe gateway was not called")
	}
	if gw.lastCheckout.ApplicationFee != 25 {
		t.Fatalf("application fee = %v, want 25 (5%% of 500)", gw.lastCheckout.ApplicationFee)
	}
	if gw.lastCheckout.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", gw.lastCheckout.Currency)
	}
	if gw.lastCheckout.Metadata["quoteId"] != "q-1" {
		t.Fatalf("metadata quoteId = %q, want q-1", gw.lastCheckout.Metadata["quoteId"])
	}
	if !strings.Contains(gw.lastCheckout.SuccessURL, "abc12345") {
		t.Fatalf("success URL %q missing slug", gw.lastCheckout.SuccessURL)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("payments recorded = %d, want 1", len(repo.payments))
	}
	if repo.payments[0].Status != models.PaymentStatusPending {
		t.Fatalf("payment status = %q, want pending", repo.payments[0].Status)
	}
	if repo.quotes["abc12345"].ProviderReference != "cs_test_123" {
		t.Fatalf("provider reference = %q", repo.quotes["abc12345"].ProviderReference)
	}
}

func TestBeginCheckoutPlanDepositWins(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	q.Packages = []models.QuotePackage{
		{ID: "pkg-1", Name: "Standard", Price: 1000, IsRecommended: true},
	}
	q.PaymentPlans = []models.PaymentPlan{
		{ID: "plan-1", Type: models.PlanTypeLight, Deposit: 300, Total: 1000},
	}
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))

	res, err := svc.BeginCheckout(context.Background(), "abc12345", "pkg-1", "plan-1")
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if res.PayToday != 300 {
		t.Fatalf("payToday = %v, want plan deposit 300", res.PayToday)
	}
}

func TestBeginCheckoutMinimumCharge(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	q.TotalAmount = 60 // half would be 30, below the floor

	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))
	res, err := svc.BeginCheckout(context.Background(), "abc12345", "", "")
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if res.PayToday != 50 {
		t.Fatalf("payToday = %v, want floor 50", res.PayToday)
	}
}

func TestBeginCheckoutRoutesToFlutterwave(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	q.Currency = "NGN"
	repo.settings["user-1"] = &models.UserSettings{
		UserID:                  "user-1",
		Currency:                "NGN",
		PlatformFeePercent:      5,
		FlutterwaveSubaccountID: "RS_123",
	}
	flw := &fakeFlutterwave{}
	svc := NewService(repo, &fakeStripe{}, flw, DefaultURLConfig(""))

	res, err := svc.BeginCheckout(context.Background(), "abc12345", "", "")
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if res.Provider != models.PaymentProviderFlutterwave {
		t.Fatalf("provider = %q, want flutterwave", res.Provider)
	}
	if flw.last == nil {
		t.Fatal("flutterwave gateway was not called")
	}
	if flw.last.Currency != "NGN" {
		t.Fatalf("currency = %q, want NGN", flw.last.Currency)
	}
	if flw.last.SubaccountID != "RS_123" {
		t.Fatalf("subaccount = %q, want RS_123", flw.last.SubaccountID)
	}
	if flw.last.SellerSharePercent != 95 {
		t.Fatalf("seller share = %v, want 95", flw.last.SellerSharePercent)
	}
	if !strings.HasPrefix(flw.last.TxRef, "abc12345-") {
		t.Fatalf("tx_ref = %q, want slug prefix", flw.last.TxRef)
	}
}

func TestBeginCheckoutErrors(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))

	if _, err := svc.BeginCheckout(context.Background(), "", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty slug: err = %v, want ErrValidation", err)
	}
	if _, err := svc.BeginCheckout(context.Background(), "missing99", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown slug: err = %v, want ErrNotFound", err)
	}

	repo.users["user-1"].StripeAccountID = ""
	if _, err := svc.BeginCheckout(context.Background(), q.Slug, "", ""); !errors.Is(err, ErrSellerNotOnboarded) {
		t.Fatalf("no payout account: err = %v, want ErrSellerNotOnboarded", err)
	}
}

func TestBeginCheckoutProviderFailure(t *testing.T) {
	repo := newFakeRepo()
	seedQuote(repo)
	svc := NewService(repo, &fakeStripe{err: errors.New("rate limited")}, nil, DefaultURLConfig(""))

	_, err := svc.BeginCheckout(context.Background(), "abc12345", "", "")
	if !errors.Is(err, ErrProviderError) {
		t.Fatalf("err = %v, want ErrProviderError", err)
	}
	if len(repo.payments) != 0 {
		t.Fatalf("payments recorded = %d, want 0 after provider failure", len(repo.payments))
	}
}

func TestBeginCheckoutUnconfiguredRail(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	q.Currency = "KES"
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))

	_, err := svc.BeginCheckout(context.Background(), "abc12345", "", "")
	if !errors.Is(err, ErrProviderUnconfigured) {
		t.Fatalf("err = %v, want ErrProviderUnconfigured", err)
	}
}

func TestBeginRetainer(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	gw := &fakeStripe{}
	svc := NewService(repo, gw, nil, DefaultURLConfig(""))

	res, err := svc.BeginRetainer(context.Background(), q.Slug, 750, "")
	if err != nil {
		t.Fatalf("BeginRetainer: %v", err)
	}
	if res.Provider != models.PaymentProviderStripe {
		t.Fatalf("provider = %q, want stripe", res.Provider)
	}
	if gw.lastSubscription == nil {
		t.Fatal("subscription gateway was not called")
	}
	if gw.lastSubscription.ProductName != "Website Redesign Retainer" {
		t.Fatalf("product name = %q", gw.lastSubscription.ProductName)
	}
	if gw.lastSubscription.ApplicationFeePercent != 5 {
		t.Fatalf("fee percent = %v, want 5", gw.lastSubscription.ApplicationFeePercent)
	}
	if q.RetainerStatus != models.RetainerStatusPending {
		t.Fatalf("retainer status = %q, want pending", q.RetainerStatus)
	}
	if q.RetainerAmount != 750 {
		t.Fatalf("retainer amount = %v, want 750", q.RetainerAmount)
	}
}

func TestBeginRetainerValidation(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))

	if _, err := svc.BeginRetainer(context.Background(), q.Slug, 2, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("tiny amount: err = %v, want ErrValidation", err)
	}
	if _, err := svc.BeginRetainer(context.Background(), "", 100, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty slug: err = %v, want ErrValidation", err)
	}
}

func TestApplyEventDepositPaidIdempotent(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	repo.payments = append(repo.payments, &models.Payment{
		QuoteID:           q.ID,
		Amount:            500,
		Status:            models.PaymentStatusPending,
		ProviderSessionID: "cs_test_123",
	})
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))

	ev := Event{Kind: EventDepositPaid, QuoteID: q.ID, SessionID: "cs_test_123"}
	for i := 0; i < 2; i++ {
		if err := svc.ApplyEvent(context.Background(), ev); err != nil {
			t.Fatalf("ApplyEvent pass %d: %v", i+1, err)
		}
	}
	if q.Status != models.QuoteStatusPaid {
		t.Fatalf("quote status = %q, want Paid", q.Status)
	}
	if repo.payments[0].Status != models.PaymentStatusPaid {
		t.Fatalf("payment status = %q, want paid", repo.payments[0].Status)
	}
}

func TestApplyEventRetainerLifecycle(t *testing.T) {
	repo := newFakeRepo()
	q := seedQuote(repo)
	svc := NewService(repo, &fakeStripe{}, nil, DefaultURLConfig(""))
	ctx := context.Background()

	if err := svc.ApplyEvent(ctx, Event{Kind: EventRetainerCheckoutCompleted, QuoteID: q.ID}); err != nil {
		t.Fatal(err)
	}
	if q.RetainerStatus != models.RetainerStatusPending {
		t.Fatalf("after checkout: %q, want pending", q.RetainerStatus)
	}

	if err := svc.ApplyEvent(ctx, Event{Kind: EventRetainerInvoicePaid, QuoteID: q.ID, SubscriptionID: "sub_1", AmountPaid: 750}); err != nil {
		t.Fatal(err)
	}
	if q.RetainerStatus != models.RetainerStatusActive || q.Status != models.QuoteStatusPaid {
		t.Fatalf("after invoice paid: retainer=%q status=%q", q.RetainerStatus, q.Status)
	}
	if q.RetainerSubscriptionID != "sub_1" || q.RetainerAmount != 750 {
		t.Fatalf("subscription = %q amount = %v", q.RetainerSubscriptionID, q.RetainerAmount)
	}

	// A failed invoice marks past_due whatever the prior state was.
	if err := svc.ApplyEvent(ctx, Event{Kind: EventRetainerInvoiceFailed, QuoteID: q.ID}); err != nil {
		t.Fatal(err)
	}
	if q.RetainerStatus != models.RetainerStatusPastDue {
		t.Fatalf("after failure: %q, want past_due", q.RetainerStatus)
	}

	if err := svc.ApplyEvent(ctx, Event{Kind: EventRetainerCanceled, QuoteID: q.ID}); err != nil {
		t.Fatal(err)
	}
	if q.RetainerStatus != models.RetainerStatusCanceled {
		t.Fatalf("after cancel: %q, want canceled", q.RetainerStatus)
	}
}

func TestApplyEventIgnored(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, DefaultURLConfig(""))
	if err := svc.ApplyEvent(context.Background(), Event{Kind: EventIgnored}); err != nil {
		t.Fatalf("ignored event: %v", err)
	}
	if len(repo.statusWrites) != 0 || len(repo.retainerWrites) != 0 {
		t.Fatal("ignored event must not write state")
	}
}

func TestResolvePackageAndPlan(t *testing.T) {
	pkgs := []models.QuotePackage{
		{ID: "a", Price: 500},
		{ID: "b", Price: 700, IsRecommended: true},
		{ID: "c", Price: 1000},
	}
	if got := resolvePackage(pkgs, "c"); got.ID != "c" {
		t.Fatalf("explicit pick = %q, want c", got.ID)
	}
	if got := resolvePackage(pkgs, ""); got.ID != "b" {
		t.Fatalf("default pick = %q, want recommended b", got.ID)
	}
	if got := resolvePackage(pkgs, "nope"); got.ID != "b" {
		t.Fatalf("unknown id pick = %q, want recommended b", got.ID)
	}
	if resolvePackage(nil, "") != nil {
		t.Fatal("empty packages must resolve to nil")
	}

	plans := []models.PaymentPlan{
		{ID: "p1", Type: models.PlanTypeLight},
		{ID: "p2", Type: models.PlanTypeBalanced},
		{ID: "p3", Type: models.PlanTypeFull},
	}
	if got := resolvePlan(plans, "p3"); got.ID != "p3" {
		t.Fatalf("explicit plan = %q, want p3", got.ID)
	}
	if got := resolvePlan(plans, ""); got.ID != "p2" {
		t.Fatalf("default plan = %q, want balanced p2", got.ID)
	}
	if got := resolvePlan(plans[:1], ""); got.ID != "p1" {
		t.Fatalf("single plan = %q, want p1", got.ID)
	}
}
