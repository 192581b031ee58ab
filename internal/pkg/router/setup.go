package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/billing"
	"github.com/quotapay/quotapay/internal/pkg/middleware"
	"github.com/quotapay/quotapay/internal/pkg/payments"
	"github.com/quotapay/quotapay/internal/pkg/quoteai"
)

// Dependencies carries everything the routes need. All provider clients are
// constructed once at startup and injected here.
type Dependencies struct {
	Repos       *repository.Repositories
	Billing     *billing.Service
	Stripe      payments.StripeGateway
	Flutterwave payments.FlutterwaveGateway
	Generator   *quoteai.Generator
	Verifier    middleware.TokenVerifier

	StripeWebhookSecret      string
	FlutterwaveWebhookSecret string
	PublicBaseURL            string
}

// InstallRouter registers every route of the service on the app.
func InstallRouter(app *fiber.App, deps Dependencies) {
	registerPublicRoutes(app, deps)
	registerSellerRoutes(app, deps)
}
