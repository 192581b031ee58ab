package models

import "time"

// Payment statuses. A row moves from pending to paid only through a verified
// webhook event; rows are never deleted.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment is one append-only ledger row recording a checkout attempt against
// a quote, keyed by the provider's session/transaction id.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	QuoteID           string    `gorm:"type:varchar(36);not null;index" json:"quote_id"`
	Amount            float64   `gorm:"not null" json:"amount"`
	Status            string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ProviderSessionID string    `gorm:"type:varchar(191);not null;index" json:"provider_session_id"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
