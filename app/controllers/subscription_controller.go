package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/billing"
)

// SubscriptionController serves retainer subscription checkout creation.
type SubscriptionController struct {
	svc *billing.Service
}

// NewSubscriptionController creates a subscription controller
func NewSubscriptionController(svc *billing.Service) *SubscriptionController {
	return &SubscriptionController{svc: svc}
}

type subscriptionRequest struct {
	Slug        string  `json:"slug" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// HandleCreateSubscription creates a monthly retainer checkout session.
func (ctrl *SubscriptionController) HandleCreateSubscription(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), providerCallTimeout)
	defer cancel()

	res, err := ctrl.svc.BeginRetainer(ctx, req.Slug, req.Amount, req.Description)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"url":      res.URL,
		"provider": res.Provider,
		"monthly":  res.PayToday,
	})
}
