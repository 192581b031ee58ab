package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/app/models"
	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

// SettingsController serves seller settings and onboarding state.
type SettingsController struct {
	users repository.UserRepository
}

// NewSettingsController creates a settings controller
func NewSettingsController(users repository.UserRepository) *SettingsController {
	return &SettingsController{users: users}
}

type settingsInput struct {
	UserType           string   `json:"userType" validate:"omitempty,max=50"`
	JobType            string   `json:"jobType" validate:"omitempty,max=100"`
	BusinessName       string   `json:"businessName" validate:"omitempty,max=200"`
	Currency           string   `json:"currency" validate:"omitempty,len=3"`
	BaseHourlyRate     *float64 `json:"baseHourlyRate" validate:"omitempty,gte=0"`
	MinHourlyRate      *float64 `json:"minHourlyRate" validate:"omitempty,gte=0"`
	DefaultDeposit     *float64 `json:"defaultDeposit" validate:"omitempty,gt=0,lte=1"`
	PreferredProvider  string   `json:"preferredProvider" validate:"omitempty,oneof=stripe flutterwave"`
	SimplifiedUI       *bool    `json:"simplifiedUi"`
	OnboardingComplete *bool    `json:"onboardingComplete"`
}

// HandleGetSettings returns the caller's settings, creating defaults on first use.
func (ctrl *SettingsController) HandleGetSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if _, err := ctrl.users.Upsert(userCtx.UserID, userCtx.Email); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to persist user")
	}

	settings, err := ctrl.users.GetSettings(userCtx.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load settings")
	}

	user, err := ctrl.users.GetByID(userCtx.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load user")
	}

	return c.JSON(fiber.Map{
		"settings":         settings,
		"stripeOnboarded":  user.HasStripeAccount(),
		"flutterwaveReady": settings.FlutterwaveSubaccountID != "",
	})
}

// HandleSaveSettings applies a partial settings update.
func (ctrl *SettingsController) HandleSaveSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req settingsInput
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

	applySettingsInput(settings, &req)

	if err := ctrl.users.SaveSettings(settings); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
	}

	return c.JSON(settings)
}

func applySettingsInput(settings *models.UserSettings, req *settingsInput) {
	if req.UserType != "" {
		settings.UserType = req.UserType
	}
	if req.JobType != "" {
		settings.JobType = req.JobType
	}
	if req.BusinessName != "" {
		settings.BusinessName = req.BusinessName
	}
	if req.Currency != "" {
		settings.Currency = strings.ToUpper(req.Currency)
	}
	if req.BaseHourlyRate != nil {
		settings.BaseHourlyRate = *req.BaseHourlyRate
	}
	if req.MinHourlyRate != nil {
		settings.MinHourlyRate = *req.MinHourlyRate
	}
	if req.DefaultDeposit != nil {
		settings.DefaultDeposit = *req.DefaultDeposit
	}
	if req.PreferredProvider != "" {
		settings.PreferredProvider = req.PreferredProvider
	}
	if req.SimplifiedUI != nil {
		settings.SimplifiedUI = *req.SimplifiedUI
	}
	if req.OnboardingComplete != nil {
		settings.OnboardingComplete = *req.OnboardingComplete
	}
}
