package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/app/controllers"
	"github.com/quotapay/quotapay/internal/pkg/middleware"
)

// registerSellerRoutes wires the authenticated seller surface behind the
// identity provider's bearer tokens.
func registerSellerRoutes(app *fiber.App, deps Dependencies) {
	quoteCtrl := controllers.NewQuoteController(deps.Repos.Quote, deps.Repos.User)
	settingsCtrl := controllers.NewSettingsController(deps.Repos.User)
	connectCtrl := controllers.NewConnectController(deps.Stripe, deps.Flutterwave, deps.Repos.User, deps.PublicBaseURL)
	aiCtrl := controllers.NewAIController(deps.Generator, deps.Repos.User)

	seller := app.Group("", middleware.RequireAuth(deps.Verifier))

	seller.Post("/quotes", quoteCtrl.HandleCreateQuote)
	seller.Get("/quotes", quoteCtrl.HandleListQuotes)
	seller.Get("/quotes/:id", quoteCtrl.HandleGetQuote)
	seller.Patch("/quotes/:id", quoteCtrl.HandleUpdateQuote)
	seller.Delete("/quotes/:id", quoteCtrl.HandleDeleteQuote)

	seller.Get("/settings", settingsCtrl.HandleGetSettings)
	seller.Post("/settings", settingsCtrl.HandleSaveSettings)

	seller.Post("/connect/onboarding", connectCtrl.HandleStripeOnboarding)
	seller.Post("/flutterwave/subaccount", connectCtrl.HandleCreateSubaccount)

	seller.Post("/ai/generate", aiCtrl.HandleGenerateQuote)
}
