package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/payments"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

// ConnectController wires sellers to their payout destinations: a Stripe
// Express account and optionally a Flutterwave subaccount.
type ConnectController struct {
	stripe  payments.StripeGateway
	flw     payments.FlutterwaveGateway
	users   repository.UserRepository
	baseURL string
}

// NewConnectController creates a connect controller
func NewConnectController(stripe payments.StripeGateway, flw payments.FlutterwaveGateway, users repository.UserRepository, baseURL string) *ConnectController {
	return &ConnectController{stripe: stripe, flw: flw, users: users, baseURL: baseURL}
}

// HandleStripeOnboarding creates (or reuses) the seller's Express account and
// returns a fresh onboarding link. Links are single-use on Stripe's side, so
// a new one is minted per request.
func (ctrl *ConnectController) HandleStripeOnboarding(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if ctrl.stripe == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stripe is not configured"})
	}

	user, err := ctrl.users.Upsert(userCtx.UserID, userCtx.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to persist user")
	}

	accountID := user.StripeAccountID
	if accountID == "" {
		accountID, err = ctrl.stripe.CreateExpressAccount(c.Context(), userCtx.Email)
		if err != nil {
			log.Printf("connect: express account creation failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stripe account creation failed"})
		}
		if err := ctrl.users.SetStripeAccount(userCtx.UserID, accountID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store account")
		}
	}

	link, err := ctrl.stripe.CreateAccountLink(c.Context(), accountID,
		ctrl.baseURL+"/settings?onboarding=refresh",
		ctrl.baseURL+"/settings?onboarding=done")
	if err != nil {
		log.Printf("connect: account link creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stripe onboarding link failed"})
	}

	return c.JSON(fiber.Map{"url": link, "accountId": accountID})
}

type subaccountRequest struct {
	AccountNumber    string   `json:"account_number" validate:"required"`
	AccountBank      string   `json:"account_bank" validate:"required"`
	BusinessName     string   `json:"business_name" validate:"required,max=200"`
	PercentageCharge *float64 `json:"percentage_charge" validate:"omitempty,gte=0,lte=100"`
}

// HandleCreateSubaccount registers a Flutterwave payout subaccount for the
// seller and flips their preferred rail to Flutterwave.
func (ctrl *ConnectController) HandleCreateSubaccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if ctrl.flw == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "flutterwave is not configured"})
	}

	var req subaccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := ctrl.users.Upsert(userCtx.UserID, userCtx.Email); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to persist user")
	}
	settings, err := ctrl.users.GetSettings(userCtx.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load settings")
	}

	// split_value is the platform's cut of each split charge
	split := settings.PlatformFeePercent
	if req.PercentageCharge != nil {
		split = *req.PercentageCharge
	}

	subaccountID, err := ctrl.flw.CreateSubaccount(c.Context(), payments.SubaccountParams{
		AccountNumber:    req.AccountNumber,
		AccountBank:      req.AccountBank,
		BusinessName:     req.BusinessName,
		PercentageCharge: split,
	})
	if err != nil {
		log.Printf("connect: subaccount creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "flutterwave subaccount creation failed"})
	}

	if err := ctrl.users.SetFlutterwaveSubaccount(userCtx.UserID, subaccountID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store subaccount")
	}

	return c.JSON(fiber.Map{"subaccountId": subaccountID})
}
