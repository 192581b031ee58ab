package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/billing"
	"github.com/quotapay/quotapay/internal/pkg/cache"
	"github.com/quotapay/quotapay/internal/pkg/database"
	"github.com/quotapay/quotapay/internal/pkg/env"
	"github.com/quotapay/quotapay/internal/pkg/identity"
	"github.com/quotapay/quotapay/internal/pkg/payments"
	"github.com/quotapay/quotapay/internal/pkg/quoteai"
	"github.com/quotapay/quotapay/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalFactory().GetRepositories()

	baseURL := env.GetEnv("PUBLIC_BASE_URL", "http://localhost:3000")

	// Provider clients are built once here and injected everywhere.
	var stripeGateway payments.StripeGateway
	if key := env.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		client, err := payments.NewStripeClient(key)
		if err != nil {
			log.Fatalf("stripe client: %v", err)
		}
		stripeGateway = client
	} else {
		log.Print("STRIPE_SECRET_KEY not set, stripe rail disabled")
	}

	var flutterwaveGateway payments.FlutterwaveGateway
	if key := env.GetEnv("FLUTTERWAVE_SECRET_KEY", ""); key != "" {
		client, err := payments.NewFlutterwaveClient(key)
		if err != nil {
			log.Fatalf("flutterwave client: %v", err)
		}
		flutterwaveGateway = client
	} else {
		log.Print("FLUTTERWAVE_SECRET_KEY not set, flutterwave rail disabled")
	}

	verifier, err := identity.NewVerifierFromEnv()
	if err != nil {
		log.Fatalf("identity verifier: %v", err)
	}

	generator, err := quoteai.NewGenerator(context.Background(), env.GetEnv("GEMINI_API_KEY", ""))
	if err != nil {
		log.Fatalf("quote generator: %v", err)
	}

	billingService := billing.NewServiceFromDB(db, stripeGateway, flutterwaveGateway, billing.DefaultURLConfig(baseURL))

	app := fiber.New(fiber.Config{
		AppName: "quotapay",
	})
	app.Use(recover.New(), logger.New())

	router.InstallRouter(app, router.Dependencies{
		Repos:                    repos,
		Billing:                  billingService,
		Stripe:                   stripeGateway,
		Flutterwave:              flutterwaveGateway,
		Generator:                generator,
		Verifier:                 verifier,
		StripeWebhookSecret:      env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		FlutterwaveWebhookSecret: env.GetEnv("FLUTTERWAVE_WEBHOOK_SECRET", ""),
		PublicBaseURL:            baseURL,
	})

	return app
}
