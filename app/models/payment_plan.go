package models

import "time"

// Payment plan type tags. The balanced plan is the default pick at checkout.
const (
	PlanTypeLight    = "light"
	PlanTypeBalanced = "balanced"
	PlanTypeFull     = "full"
)

// PaymentPlan describes one deposit schedule for a quote: the amount due
// today versus the total after any full-payment discount.
type PaymentPlan struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuoteID   string    `gorm:"type:varchar(36);not null;index" json:"quote_id"`
	Type      string    `gorm:"type:varchar(20)" json:"type"`
	Deposit   float64   `gorm:"not null" json:"deposit"`
	Total     float64   `gorm:"not null" json:"total"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
