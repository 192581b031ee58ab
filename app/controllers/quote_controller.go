package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotapay/quotapay/app/models"
	"github.com/quotapay/quotapay/app/repository"
	"github.com/quotapay/quotapay/internal/pkg/cache"
	"github.com/quotapay/quotapay/internal/pkg/pricing"
	"github.com/quotapay/quotapay/internal/pkg/slug"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

const (
	publicQuoteCacheTTL = 60 * time.Second
	slugRetryLimit      = 5
	maxQuotePageSize    = 100
)

// QuoteController serves quote CRUD for sellers and the public quote page.
type QuoteController struct {
	quotes repository.QuoteRepository
	users  repository.UserRepository
}

// NewQuoteController creates a quote controller
func NewQuoteController(quotes repository.QuoteRepository, users repository.UserRepository) *QuoteController {
	return &QuoteController{quotes: quotes, users: users}
}

type quoteItemInput struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type quoteInput struct {
	ClientName   string                 `json:"clientName"`
	ClientPhone  string                 `json:"clientPhone"`
	ProjectTitle string                 `json:"projectTitle" validate:"required,max=255"`
	RawNotes     string                 `json:"rawNotes"`
	Summary      string                 `json:"summary"`
	Items        []quoteItemInput       `json:"items" validate:"dive"`
	Total        float64                `json:"total" validate:"gte=0"`
	Currency     string                 `json:"currency" validate:"omitempty,len=3"`
	Status       string                 `json:"status" validate:"omitempty,oneof=Draft Sent"`
	ExpiresAt    *time.Time             `json:"expiresAt"`
	Packages     []pricing.PackageDraft `json:"packages"`
	PaymentPlans []pricing.PlanDraft    `json:"paymentPlans"`
}

// HandleCreateQuote creates a quote with normalized pricing under a fresh slug.
func (ctrl *QuoteController) HandleCreateQuote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req quoteInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := ctrl.users.Upsert(userCtx.UserID, userCtx.Email); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to persist user")
	}

	publicSlug, err := ctrl.newUniqueSlug()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate slug")
	}

	total := req.Total
	items := make([]models.QuoteItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.QuoteItem{Description: it.Description, Amount: it.Amount})
	}
	if total == 0 {
		for _, it := range items {
			total += it.Amount
		}
	}

	status := models.QuoteStatusDraft
	if req.Status != "" {
		status = req.Status
	}

	quote := &models.Quote{
		ID:           uuid.NewString(),
		UserID:       userCtx.UserID,
		Slug:         publicSlug,
		Status:       status,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		ProjectTitle: req.ProjectTitle,
		RawNotes:     req.RawNotes,
		AISummary:    req.Summary,
		Items:        items,
		TotalAmount:  total,
		Currency:     req.Currency,
		ExpiresAt:    req.ExpiresAt,
	}
	quote.Packages, quote.PaymentPlans = buildPricing(quote.ID, req.Packages, req.PaymentPlans, total)

	if err := ctrl.quotes.Create(quote); err != nil {
		log.Printf("quote: create failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create quote")
	}

	return c.Status(fiber.StatusCreated).JSON(quote)
}

// HandleListQuotes returns the caller's quotes, newest first.
func (ctrl *QuoteController) HandleListQuotes(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > maxQuotePageSize {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	quotes, err := ctrl.quotes.ListByUser(userCtx.UserID, offset, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list quotes")
	}
	total, err := ctrl.quotes.CountByUser(userCtx.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to count quotes")
	}

	return c.JSON(fiber.Map{"quotes": quotes, "total": total})
}

// HandleGetQuote returns one of the caller's quotes by id.
func (ctrl *QuoteController) HandleGetQuote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	quote, err := ctrl.quotes.GetByIDForUser(c.Params("id"), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load quote")
	}
	return c.JSON(quote)
}

// HandleUpdateQuote applies a partial edit to one of the caller's quotes.
// Paid status and retainer state are webhook-owned and cannot be set here.
func (ctrl *QuoteController) HandleUpdateQuote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	quote, err := ctrl.quotes.GetByIDForUser(c.Params("id"), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load quote")
	}

	var req quoteInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if req.ProjectTitle != "" {
		quote.ProjectTitle = req.ProjectTitle
	}
	if req.ClientName != "" {
		quote.ClientName = req.ClientName
	}
	if req.ClientPhone != "" {
		quote.ClientPhone = req.ClientPhone
	}
	if req.RawNotes != "" {
		quote.RawNotes = req.RawNotes
	}
	if req.Summary != "" {
		quote.AISummary = req.Summary
	}
	if req.Currency != "" {
		quote.Currency = req.Currency
	}
	if req.Status != "" && quote.Status != models.QuoteStatusPaid {
		quote.Status = req.Status
	}
	if req.ExpiresAt != nil {
		quote.ExpiresAt = req.ExpiresAt
	}
	if len(req.Items) > 0 {
		items := make([]models.QuoteItem, 0, len(req.Items))
		total := 0.0
		for _, it := range req.Items {
			items = append(items, models.QuoteItem{Description: it.Description, Amount: it.Amount})
			total += it.Amount
		}
		quote.Items = items
		quote.TotalAmount = total
	}
	if req.Total > 0 {
		quote.TotalAmount = req.Total
	}

	if len(req.Packages) > 0 || len(req.PaymentPlans) > 0 {
		packages, plans := buildPricing(quote.ID, req.Packages, req.PaymentPlans, quote.TotalAmount)
		if err := ctrl.quotes.ReplacePricing(quote.ID, packages, plans); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to update pricing")
		}
		quote.Packages = packages
		quote.PaymentPlans = plans
	}

	if err := ctrl.quotes.Update(quote); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update quote")
	}

	ctrl.invalidatePublicCache(quote.Slug)
	return c.JSON(quote)
}

// HandleDeleteQuote soft deletes one of the caller's quotes.
func (ctrl *QuoteController) HandleDeleteQuote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	quote, err := ctrl.quotes.GetByIDForUser(c.Params("id"), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load quote")
	}

	if err := ctrl.quotes.Delete(quote.ID, userCtx.UserID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete quote")
	}

	ctrl.invalidatePublicCache(quote.Slug)
	return c.JSON(fiber.Map{"deleted": true})
}

// publicQuote is the buyer-facing projection of a quote. Raw notes and
// internal references never leave the server.
type publicQuote struct {
	Slug           string                `json:"slug"`
	Status         string                `json:"status"`
	ClientName     string                `json:"client_name"`
	ProjectTitle   string                `json:"project_title"`
	Summary        string                `json:"summary"`
	Items          []models.QuoteItem    `json:"items"`
	TotalAmount    float64               `json:"total_amount"`
	Currency       string                `json:"currency"`
	Packages       []models.QuotePackage `json:"packages"`
	PaymentPlans   []models.PaymentPlan  `json:"payment_plans"`
	RetainerStatus string                `json:"retainer_status"`
	Expired        bool                  `json:"expired"`
}

// HandlePublicQuote serves the public quote page data by slug. Responses are
// cached briefly; the counter write still happens on every request.
func (ctrl *QuoteController) HandlePublicQuote(c *fiber.Ctx) error {
	publicSlug := c.Params("slug")
	if !slug.Valid(publicSlug) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
	}

	cacheKey := "public_quote:" + publicSlug
	if cached, err := cache.Get(cacheKey); err == nil {
		var view publicQuote
		if json.Unmarshal([]byte(cached), &view) == nil {
			go ctrl.recordViewBySlug(publicSlug)
			return c.JSON(view)
		}
	} else if !cache.IsNotFound(err) {
		log.Printf("quote: cache read failed: %v", err)
	}

	quote, err := ctrl.quotes.GetBySlug(publicSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load quote")
	}

	view := publicQuote{
		Slug:           quote.Slug,
		Status:         quote.Status,
		ClientName:     quote.ClientName,
		ProjectTitle:   quote.ProjectTitle,
		Summary:        quote.AISummary,
		Items:          quote.Items,
		TotalAmount:    quote.TotalAmount,
		Currency:       quote.Currency,
		Packages:       quote.Packages,
		PaymentPlans:   quote.PaymentPlans,
		RetainerStatus: quote.RetainerStatus,
		Expired:        quote.IsExpired(),
	}

	if payload, err := json.Marshal(view); err == nil {
		if err := cache.Set(cacheKey, payload, publicQuoteCacheTTL); err != nil {
			log.Printf("quote: cache write failed: %v", err)
		}
	}

	if err := ctrl.quotes.RecordView(quote.ID); err != nil {
		log.Printf("quote: view tracking failed for %s: %v", quote.ID, err)
	}

	return c.JSON(view)
}

type trackRequest struct {
	QuoteID string `json:"quoteId"`
	Slug    string `json:"slug"`
	Type    string `json:"type" validate:"omitempty,oneof=VIEW"`
}

// HandleTrackView records a view event for a public quote, addressed by
// quote id or slug. Only VIEW events exist today.
func (ctrl *QuoteController) HandleTrackView(c *fiber.Ctx) error {
	var req trackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	switch {
	case req.QuoteID != "":
		if err := ctrl.quotes.RecordView(req.QuoteID); err != nil {
			log.Printf("quote: view tracking failed for %s: %v", req.QuoteID, err)
		}
	case slug.Valid(req.Slug):
		ctrl.recordViewBySlug(req.Slug)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quoteId or slug required"})
	}
	return c.JSON(fiber.Map{"tracked": true})
}

func (ctrl *QuoteController) recordViewBySlug(publicSlug string) {
	quote, err := ctrl.quotes.GetBySlug(publicSlug)
	if err != nil {
		return
	}
	if err := ctrl.quotes.RecordView(quote.ID); err != nil {
		log.Printf("quote: view tracking failed for %s: %v", quote.ID, err)
	}
}

func (ctrl *QuoteController) invalidatePublicCache(publicSlug string) {
	if err := cache.Delete("public_quote:" + publicSlug); err != nil {
		log.Printf("quote: cache invalidation failed: %v", err)
	}
}

// newUniqueSlug generates a slug and retries on the unlikely collision.
func (ctrl *QuoteController) newUniqueSlug() (string, error) {
	for i := 0; i < slugRetryLimit; i++ {
		candidate, err := slug.Generate(slug.DefaultLength)
		if err != nil {
			return "", err
		}
		taken, err := ctrl.quotes.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free slug in %d attempts", slugRetryLimit)
}

// buildPricing normalizes drafted tiers and schedules into persistable rows.
func buildPricing(quoteID string, pkgs []pricing.PackageDraft, plans []pricing.PlanDraft, total float64) ([]models.QuotePackage, []models.PaymentPlan) {
	if total <= 0 {
		total = 500
	}

	normalized := pricing.NormalizePackages(pkgs, total)
	packages := make([]models.QuotePackage, 0, len(normalized))
	recommendedPrice := total
	for _, p := range normalized {
		if p.IsRecommended {
			recommendedPrice = p.Price
		}
		packages = append(packages, models.QuotePackage{
			ID:            uuid.NewString(),
			QuoteID:       quoteID,
			Name:          p.Name,
			Price:         p.Price,
			Description:   p.Description,
			Features:      p.Features,
			IsRecommended: p.IsRecommended,
			Timeline:      p.Timeline,
			Revisions:     p.Revisions,
			SupportLevel:  p.SupportLevel,
		})
	}

	schedules := pricing.NormalizePlans(plans, recommendedPrice)
	paymentPlans := make([]models.PaymentPlan, 0, len(schedules))
	for _, s := range schedules {
		paymentPlans = append(paymentPlans, models.PaymentPlan{
			ID:      uuid.NewString(),
			QuoteID: quoteID,
			Type:    s.Type,
			Deposit: s.Deposit,
			Total:   s.Total,
		})
	}

	return packages, paymentPlans
}
