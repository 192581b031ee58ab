package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/quotapay/quotapay/app/controllers"
)

// registerPublicRoutes wires the buyer-facing surface: the public quote page,
// checkout creation and the provider webhooks. Webhooks are excluded from the
// limiter so provider retries are never throttled into failure.
func registerPublicRoutes(app *fiber.App, deps Dependencies) {
	quoteCtrl := controllers.NewQuoteController(deps.Repos.Quote, deps.Repos.User)
	checkoutCtrl := controllers.NewCheckoutController(deps.Billing)
	subscriptionCtrl := controllers.NewSubscriptionController(deps.Billing)
	webhookCtrl := controllers.NewWebhookController(deps.Billing, deps.StripeWebhookSecret, deps.FlutterwaveWebhookSecret)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	public := app.Group("", limiter.New(limiter.Config{Max: 60}))
	public.Get("/q/:slug", quoteCtrl.HandlePublicQuote)
	public.Post("/analytics/track", quoteCtrl.HandleTrackView)
	public.Post("/checkout", checkoutCtrl.HandleCreateCheckout)
	public.Post("/subscriptions", subscriptionCtrl.HandleCreateSubscription)

	app.Post("/webhooks/stripe", webhookCtrl.HandleStripeWebhook)
	app.Post("/webhooks/flutterwave", webhookCtrl.HandleFlutterwaveWebhook)
}
