package models

import "time"

// QuotePackage is one of typically three pricing tiers attached to a quote.
// Packages are immutable after creation; quote edits replace the whole set.
type QuotePackage struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuoteID       string    `gorm:"type:varchar(36);not null;index" json:"quote_id"`
	Name          string    `gorm:"type:varchar(100)" json:"name"`
	Price         float64   `gorm:"not null" json:"price"`
	Description   string    `gorm:"type:text" json:"description"`
	Features      []string  `gorm:"serializer:json;type:text" json:"features"`
	IsRecommended bool      `gorm:"default:false" json:"is_recommended"`
	Timeline      string    `gorm:"type:varchar(100);default:''" json:"timeline,omitempty"`
	Revisions     string    `gorm:"type:varchar(100);default:''" json:"revisions,omitempty"`
	SupportLevel  string    `gorm:"type:varchar(100);default:''" json:"support_level,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
