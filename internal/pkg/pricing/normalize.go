// Package pricing normalizes AI-drafted (or absent) pricing output into the
// three tiers and deposit schedules a quote always carries.
package pricing

import (
	"math"
	"sort"
)

// PackageDraft mirrors one pricing tier as produced by the AI stage or
// submitted by the seller, before normalization.
type PackageDraft struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	IsRecommended bool     `json:"isRecommended"`
	Timeline      string   `json:"timeline,omitempty"`
	Revisions     string   `json:"revisions,omitempty"`
	SupportLevel  string   `json:"supportLevel,omitempty"`
}

// PlanDraft mirrors one raw deposit schedule (percentages, not amounts).
type PlanDraft struct {
	Type            string  `json:"type"`
	DepositPercent  float64 `json:"deposit_percent"`
	DiscountPercent float64 `json:"discount_percent"`
}

// PlanSchedule is a normalized deposit schedule in currency units.
type PlanSchedule struct {
	Type    string  `json:"type"`
	Deposit float64 `json:"deposit"`
	Total   float64 `json:"total"`
}

const maxFeatures = 6

// NormalizePackages always returns exactly three tiers with exactly one
// flagged recommended and every price at or above floorTotal. Fewer than
// three candidates means the tiers are synthesized from the floor.
func NormalizePackages(candidates []PackageDraft, floorTotal float64) []PackageDraft {
	if len(candidates) < 3 {
		return []PackageDraft{
			{
				Name:        "Essential",
				Price:       math.Round(floorTotal),
				Description: "Lean scope to deliver essentials quickly.",
				Features:    []string{"Core deliverables", "Email support", "1 revision"},
			},
			{
				Name:          "Recommended",
				Price:         math.Round(floorTotal * 1.4),
				Description:   "Balanced scope with polish and QA.",
				Features:      []string{"Everything in Essential", "QA + polish", "2 revisions"},
				IsRecommended: true,
			},
			{
				Name:        "Complete",
				Price:       math.Round(floorTotal * 2),
				Description: "Premium experience with priority support.",
				Features:    []string{"Everything in Recommended", "Priority support", "Launch assistance"},
			},
		}
	}

	sorted := make([]PackageDraft, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	recommended := false
	for _, p := range sorted {
		if p.IsRecommended {
			recommended = true
			break
		}
	}
	if !recommended {
		sorted[1].IsRecommended = true
	}

	// Exactly one recommended tier: first flag wins, the rest are cleared.
	seen := false
	for i := range sorted {
		if sorted[i].IsRecommended {
			if seen {
				sorted[i].IsRecommended = false
			}
			seen = true
		}
		if sorted[i].Price < floorTotal {
			sorted[i].Price = floorTotal
		}
		if len(sorted[i].Features) > maxFeatures {
			sorted[i].Features = sorted[i].Features[:maxFeatures]
		}
	}

	return sorted
}

// NormalizePlans converts raw deposit schedules to currency amounts with the
// clamps that keep deposits inside [20%, 100%] and discounts inside [0, 20%].
// Deposit never exceeds total by construction.
func NormalizePlans(candidates []PlanDraft, baseTotal float64) []PlanSchedule {
	source := candidates
	if len(source) == 0 {
		source = []PlanDraft{
			{Type: "light", DepositPercent: 0.3},
			{Type: "balanced", DepositPercent: 0.5},
			{Type: "full", DepositPercent: 1, DiscountPercent: 0.05},
		}
	}

	out := make([]PlanSchedule, 0, len(source))
	for _, p := range source {
		depositPercent := p.DepositPercent
		if depositPercent == 0 {
			depositPercent = 0.5
		}
		depositPercent = clamp(depositPercent, 0.2, 1.0)
		discountPercent := clamp(p.DiscountPercent, 0, 0.2)

		total := math.Round(baseTotal * (1 - discountPercent))
		deposit := math.Round(total * depositPercent)
		out = append(out, PlanSchedule{Type: p.Type, Deposit: deposit, Total: total})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
