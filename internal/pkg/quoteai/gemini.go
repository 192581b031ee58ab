// Package quoteai drafts quote pricing with Gemini. Raw model output is
// untrusted and always flows through the pricing normalizer; a static mock
// draft covers missing API keys and model failures.
package quoteai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quotapay/quotapay/app/models"
	"github.com/quotapay/quotapay/internal/pkg/pricing"
)

const defaultModel = "gemini-1.5-pro"

// SellerProfile is the seller context handed to the pricing prompts.
type SellerProfile struct {
	BusinessName   string  `json:"businessName,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	BaseHourlyRate float64 `json:"baseHourlyRate,omitempty"`
	MinHourlyRate  float64 `json:"minHourlyRate,omitempty"`
	DefaultDeposit float64 `json:"defaultDeposit,omitempty"`
}

// Draft is a generated quote proposal ready for persistence.
type Draft struct {
	Summary      string                 `json:"summary"`
	Items        []models.QuoteItem     `json:"items"`
	Total        float64                `json:"total"`
	Packages     []pricing.PackageDraft `json:"packages"`
	PaymentPlans []pricing.PlanSchedule `json:"paymentPlans"`
}

// Generator produces quote drafts. A zero-value generator (no API key) serves
// the mock draft so the rest of the flow keeps working.
type Generator struct {
	client    *genai.Client
	modelName string
}

// NewGenerator builds a generator; an empty API key yields a mock-only one.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		log.Print("quoteai: no API key configured, using mock drafts")
		return &Generator{modelName: defaultModel}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("quoteai: init client: %w", err)
	}
	return &Generator{client: client, modelName: defaultModel}, nil
}

// Close releases the underlying API client.
func (g *Generator) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

type scopeResult struct {
	Deliverables []struct {
		Title string  `json:"title"`
		Hours float64 `json:"hours"`
	} `json:"deliverables"`
	TotalHoursEstimate float64 `json:"total_hours_estimate"`
	HiddenWorkHours    float64 `json:"hidden_work_hours"`
}

type pricingResult struct {
	Packages     []pricing.PackageDraft `json:"packages"`
	PaymentPlans []pricing.PlanDraft    `json:"payment_plans"`
}

// Generate drafts pricing for a project. Model failures fall back to the
// mock draft rather than failing the request.
func (g *Generator) Generate(ctx context.Context, projectTitle, notes string, seller SellerProfile) *Draft {
	if g.client == nil {
		return mockDraft()
	}

	baseRate := seller.BaseHourlyRate
	if baseRate <= 0 {
		baseRate = 100
	}
	minRate := seller.MinHourlyRate
	if minRate <= 0 {
		minRate = 75
	}

	model := g.client.GenerativeModel(g.modelName)

	sellerJSON, _ := json.Marshal(seller)
	scopePrompt := fmt.Sprintf(`You are a senior project manager. Analyze the project and return JSON only.
Project Title: %q
Notes: """%s"""
Seller: %s

Return JSON:
{"deliverables":[{"title":"","hours":0}],"total_hours_estimate":0,"hidden_work_hours":0}
Only JSON.`, projectTitle, notes, sellerJSON)

	scope := scopeResult{TotalHoursEstimate: 10, HiddenWorkHours: 2}
	if text, err := g.generateText(ctx, model, scopePrompt); err == nil {
		safeParse(text, &scope)
	} else {
		log.Printf("quoteai: scope stage failed: %v", err)
		return mockDraft()
	}

	avgHours := scope.TotalHoursEstimate + scope.HiddenWorkHours
	if avgHours <= 0 {
		avgHours = 12
	}
	floorTotal := math.Max(avgHours*minRate, 500)

	pricingPrompt := fmt.Sprintf(`You are a pricing strategist. Create 3 tiers and payment plans. Respond with JSON only.
Project Title: %q
Seller settings: %s
Rules:
- Never price below min rate (%.0f).
- Standard ~40-50%% above Basic; Premium ~40-50%% above Standard.
- Mark one recommended.

Return JSON:
{"packages":[{"name":"","price":0,"description":"","features":[],"isRecommended":false,"timeline":"","revisions":"","supportLevel":""}],
"payment_plans":[{"type":"light","deposit_percent":0.3,"discount_percent":0}]}
Only JSON.`, projectTitle, sellerJSON, minRate)

	var priced pricingResult
	if text, err := g.generateText(ctx, model, pricingPrompt); err == nil {
		safeParse(text, &priced)
	} else {
		log.Printf("quoteai: pricing stage failed: %v", err)
		return mockDraft()
	}

	packages := pricing.NormalizePackages(priced.Packages, floorTotal)
	recommendedPrice := floorTotal
	for _, p := range packages {
		if p.IsRecommended {
			recommendedPrice = p.Price
			break
		}
	}
	plans := pricing.NormalizePlans(priced.PaymentPlans, recommendedPrice)

	items := make([]models.QuoteItem, 0, len(scope.Deliverables))
	for _, d := range scope.Deliverables {
		hours := d.Hours
		if hours <= 0 {
			hours = 1
		}
		items = append(items, models.QuoteItem{
			Description: d.Title,
			Amount:      math.Max(math.Round(hours*baseRate), 100),
		})
	}
	if len(items) == 0 {
		items = []models.QuoteItem{
			{Description: "Discovery & Planning", Amount: math.Round(floorTotal * 0.2)},
			{Description: "Execution & Build", Amount: math.Round(floorTotal * 0.6)},
			{Description: "QA & Launch Support", Amount: math.Round(floorTotal * 0.2)},
		}
	}

	summary := "Here is a confident proposal tailored to your project."
	copyPrompt := fmt.Sprintf(`You are a copywriter. Write a short summary for the recommended option.
Project: %q
Return JSON: {"summary":"max 2 sentences energetic summary"}
Only JSON.`, projectTitle)
	if text, err := g.generateText(ctx, model, copyPrompt); err == nil {
		var out struct {
			Summary string `json:"summary"`
		}
		if safeParse(text, &out) && out.Summary != "" {
			summary = out.Summary
		}
	}

	return &Draft{
		Summary:      summary,
		Items:        items,
		Total:        recommendedPrice,
		Packages:     packages,
		PaymentPlans: plans,
	}
}

func (g *Generator) generateText(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return sb.String(), nil
}

// cleanJSON strips the markdown fences models wrap JSON in.
func cleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func safeParse(text string, out any) bool {
	if err := json.Unmarshal([]byte(cleanJSON(text)), out); err != nil {
		log.Printf("quoteai: failed to parse model JSON: %v", err)
		return false
	}
	return true
}

// mockDraft is the fallback when no API key is set or generation fails.
func mockDraft() *Draft {
	return &Draft{
		Summary: "Generated (Mock): Based on your request, here is a standard estimate.",
		Items: []models.QuoteItem{
			{Description: "Scope Assessment", Amount: 500},
			{Description: "Implementation", Amount: 2000},
			{Description: "Testing & QA", Amount: 500},
		},
		Total:        3000,
		Packages:     pricing.NormalizePackages(nil, 3000),
		PaymentPlans: pricing.NormalizePlans(nil, 4200),
	}
}
