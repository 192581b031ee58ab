package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/billing"
)

// providerCallTimeout bounds the hosted-session creation round trip.
const providerCallTimeout = 20 * time.Second

// CheckoutController serves public deposit checkout creation.
type CheckoutController struct {
	svc *billing.Service
}

// NewCheckoutController creates a checkout controller
func NewCheckoutController(svc *billing.Service) *CheckoutController {
	return &CheckoutController{svc: svc}
}

type checkoutRequest struct {
	Slug      string `json:"slug" validate:"required"`
	PackageID string `json:"packageId"`
	PlanID    string `json:"planId"`
}

// HandleCreateCheckout creates a hosted payment session for a quote deposit.
// The endpoint is public: buyers only hold the slug, never a login.
func (ctrl *CheckoutController) HandleCreateCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), providerCallTimeout)
	defer cancel()

	res, err := ctrl.svc.BeginCheckout(ctx, req.Slug, req.PackageID, req.PlanID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"url":      res.URL,
		"provider": res.Provider,
		"payToday": res.PayToday,
	})
}
