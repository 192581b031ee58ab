package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/billing"
	"github.com/quotapay/quotapay/internal/pkg/payments"
)

// WebhookController receives provider callbacks. Both endpoints verify the
// delivery before touching any state; after verification they acknowledge
// with 200 even when the event is not actionable, so providers stop retrying.
type WebhookController struct {
	svc               *billing.Service
	stripeSecret      string
	flutterwaveSecret string
}

// NewWebhookController creates a webhook controller
func NewWebhookController(svc *billing.Service, stripeSecret, flutterwaveSecret string) *WebhookController {
	return &WebhookController{
		svc:               svc,
		stripeSecret:      stripeSecret,
		flutterwaveSecret: flutterwaveSecret,
	}
}

// HandleStripeWebhook verifies the stripe-signature header against the raw
// body and applies the resulting status transition.
func (ctrl *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("stripe-signature")

	stripeEvent, err := billing.VerifyStripePayload(rawBody, signature, ctrl.stripeSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	ev, err := billing.ParseStripeEvent(stripeEvent)
	if err != nil {
		log.Printf("webhook: failed to decode stripe event %s: %v", stripeEvent.Type, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed event"})
	}

	if err := ctrl.svc.ApplyEvent(c.Context(), ev); err != nil {
		log.Printf("webhook: failed to apply stripe event %s: %v", stripeEvent.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}

	return c.JSON(fiber.Map{"received": true})
}

// HandleFlutterwaveWebhook verifies the verif-hash header and applies the
// resulting status transition.
func (ctrl *WebhookController) HandleFlutterwaveWebhook(c *fiber.Ctx) error {
	if !payments.VerifyFlutterwaveWebhook(c.Get("verif-hash"), ctrl.flutterwaveSecret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	ev, err := billing.ParseFlutterwaveEvent(c.BodyRaw())
	if err != nil {
		log.Printf("webhook: failed to decode flutterwave event: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed event"})
	}

	if err := ctrl.svc.ApplyEvent(c.Context(), ev); err != nil {
		log.Printf("webhook: failed to apply flutterwave event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}

	return c.JSON(fiber.Map{"received": true})
}
