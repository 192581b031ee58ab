package models

import (
	"time"

	"gorm.io/gorm"
)

// Quote lifecycle statuses. Paid is set exclusively by verified webhook events.
const (
	QuoteStatusDraft  = "Draft"
	QuoteStatusSent   = "Sent"
	QuoteStatusViewed = "Viewed"
	QuoteStatusPaid   = "Paid"
)

// Retainer statuses form a closed set; transitions only happen through
// webhook-verified events, never client input.
const (
	RetainerStatusNone     = "none"
	RetainerStatusPending  = "pending"
	RetainerStatusActive   = "active"
	RetainerStatusPastDue  = "past_due"
	RetainerStatusCanceled = "canceled"
)

// QuoteItem is one free-form line item stored in the quote's items JSON.
type QuoteItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Quote is a seller's priced proposal, published under a random public slug.
type Quote struct {
	ID                     string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID                 string         `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Slug                   string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"slug"`
	Status                 string         `gorm:"type:varchar(20);default:'Draft'" json:"status"`
	ClientName             string         `gorm:"type:varchar(200)" json:"client_name"`
	ClientPhone            string         `gorm:"type:varchar(40);default:''" json:"client_phone"`
	ProjectTitle           string         `gorm:"type:varchar(255)" json:"project_title"`
	RawNotes               string         `gorm:"type:text" json:"raw_notes"`
	AISummary              string         `gorm:"type:text" json:"ai_summary"`
	Items                  []QuoteItem    `gorm:"serializer:json;type:longtext" json:"items"`
	TotalAmount            float64        `gorm:"default:0" json:"total_amount"`
	Currency               string         `gorm:"type:varchar(3);default:''" json:"currency"`
	PaymentProvider        string         `gorm:"type:varchar(20);default:''" json:"payment_provider"`
	ProviderReference      string         `gorm:"type:varchar(191);default:'';index" json:"provider_reference"`
	Views                  int            `gorm:"default:0" json:"views"`
	RetainerStatus         string         `gorm:"type:varchar(20);default:'none'" json:"retainer_status"`
	RetainerAmount         float64        `gorm:"default:0" json:"retainer_amount"`
	RetainerSubscriptionID string         `gorm:"type:varchar(191);default:''" json:"retainer_subscription_id"`
	ExpiresAt              *time.Time     `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt              time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`

	Packages     []QuotePackage `gorm:"foreignKey:QuoteID" json:"packages"`
	PaymentPlans []PaymentPlan  `gorm:"foreignKey:QuoteID" json:"payment_plans"`
	Payments     []Payment      `gorm:"foreignKey:QuoteID" json:"-"`
}

// IsExpired reports whether the quote's optional expiry has passed.
func (q *Quote) IsExpired() bool {
	return q.ExpiresAt != nil && q.ExpiresAt.Before(time.Now())
}
