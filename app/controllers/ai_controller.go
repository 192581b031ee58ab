package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/quoteai"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

// AIController serves AI quote drafting for sellers.
type AIController struct {
	generator *quoteai.Generator
	users     repository.UserRepository
}

// NewAIController creates an AI controller
func NewAIController(generator *quoteai.Generator, users repository.UserRepository) *AIController {
	return &AIController{generator: generator, users: users}
}

type generateRequest struct {
	ProjectTitle string `json:"projectTitle" validate:"required,max=255"`
	Notes        string `json:"notes" validate:"max=10000"`
}

// HandleGenerateQuote drafts pricing for a project from free-form notes. The
// result is a proposal only; nothing is persisted until the quote is created.
func (ctrl *AIController) HandleGenerateQuote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req generateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	profile := quoteai.SellerProfile{}
	if settings, err := ctrl.users.GetSettings(userCtx.UserID); err == nil {
		profile = quoteai.SellerProfile{
			BusinessName:   settings.BusinessName,
			Currency:       settings.Currency,
			BaseHourlyRate: settings.BaseHourlyRate,
			MinHourlyRate:  settings.MinHourlyRate,
			DefaultDeposit: settings.DefaultDeposit,
		}
	}

	draft := ctrl.generator.Generate(c.Context(), req.ProjectTitle, req.Notes, profile)
	return c.JSON(draft)
}
