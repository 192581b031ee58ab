package billing

import (
	"github.com/quotapay/quotapay/app/models"
	"gorm.io/gorm"
)

// Repository provides the DB operations used by the billing service.
type Repository interface {
	GetQuoteBySlug(slug string) (*models.Quote, error)
	GetUser(id string) (*models.User, error)
	GetUserSettings(userID string) (*models.UserSettings, error)
	CreatePayment(p *models.Payment) error
	SetQuoteProviderReference(quoteID, provider, reference string) error
	MarkPaymentsPaid(providerSessionID string) error
	SetQuoteStatus(quoteID, status string) error
	SetRetainerPending(quoteID string, amount float64) error
	ActivateRetainer(quoteID, subscriptionID string, amountPaid float64) error
	SetRetainerStatus(quoteID, status string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetQuoteBySlug(slug string) (*models.Quote, error) {
	var q models.Quote
	err := r.db.Preload("Packages").Preload("PaymentPlans").
		Where("slug = ?", slug).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *gormRepository) GetUser(id string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetUserSettings(userID string) (*models.UserSettings, error) {
	var us models.UserSettings
	if err := r.db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		return nil, err
	}
	return &us, nil
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) SetQuoteProviderReference(quoteID, provider, reference string) error {
	return r.db.Model(&models.Quote{}).Where("id = ?", quoteID).Updates(map[string]interface{}{
		"payment_provider":   provider,
		"provider_reference": reference,
	}).Error
}

// MarkPaymentsPaid flips every ledger row for the session to paid. Re-applying
// the same event is a no-op, which keeps webhook retries harmless.
func (r *gormRepository) MarkPaymentsPaid(providerSessionID string) error {
	return r.db.Model(&models.Payment{}).
		Where("provider_session_id = ?", providerSessionID).
		Update("status", models.PaymentStatusPaid).Error
}

func (r *gormRepository) SetQuoteStatus(quoteID, status string) error {
	return r.db.Model(&models.Quote{}).Where("id = ?", quoteID).
		Update("status", status).Error
}

func (r *gormRepository) SetRetainerPending(quoteID string, amount float64) error {
	return r.db.Model(&models.Quote{}).Where("id = ?", quoteID).Updates(map[string]interface{}{
		"retainer_status": models.RetainerStatusPending,
		"retainer_amount": amount,
	}).Error
}

func (r *gormRepository) ActivateRetainer(quoteID, subscriptionID string, amountPaid float64) error {
	updates := map[string]interface{}{
		"status":          models.QuoteStatusPaid,
		"retainer_status": models.RetainerStatusActive,
	}
	if subscriptionID != "" {
		updates["retainer_subscription_id"] = subscriptionID
	}
	if amountPaid > 0 {
		updates["retainer_amount"] = amountPaid
	}
	return r.db.Model(&models.Quote{}).Where("id = ?", quoteID).Updates(updates).Error
}

func (r *gormRepository) SetRetainerStatus(quoteID, status string) error {
	return r.db.Model(&models.Quote{}).Where("id = ?", quoteID).
		Update("retainer_status", status).Error
}
