package repository

import (
	"github.com/quotapay/quotapay/app/models"
	"gorm.io/gorm"
)

// quoteRepository implements the QuoteRepository interface
type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository instance
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

// Create creates a quote together with its packages and payment plans
func (r *quoteRepository) Create(quote *models.Quote) error {
	return r.db.Create(quote).Error
}

// GetByID retrieves a quote with its pricing relations
func (r *quoteRepository) GetByID(id string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Packages").Preload("PaymentPlans").Preload("Payments").
		Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByIDForUser retrieves a quote only when it belongs to the given user
func (r *quoteRepository) GetByIDForUser(id, userID string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Packages").Preload("PaymentPlans").
		Where("id = ? AND user_id = ?", id, userID).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetBySlug retrieves a quote by its public slug
func (r *quoteRepository) GetBySlug(slug string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Packages").Preload("PaymentPlans").
		Where("slug = ?", slug).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListByUser retrieves a user's quotes with pagination, newest first
func (r *quoteRepository) ListByUser(userID string, offset, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.Preload("Packages").Preload("PaymentPlans").
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&quotes).Error
	return quotes, err
}

// CountByUser returns the number of quotes for a user
func (r *quoteRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Quote{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Update persists quote field changes
func (r *quoteRepository) Update(quote *models.Quote) error {
	return r.db.Save(quote).Error
}

// ReplacePricing swaps the full package and plan sets of a quote. Edits always
// replace the whole set so partial updates cannot leave stale tiers behind.
func (r *quoteRepository) ReplacePricing(quoteID string, packages []models.QuotePackage, plans []models.PaymentPlan) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quoteID).Delete(&models.QuotePackage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", quoteID).Delete(&models.PaymentPlan{}).Error; err != nil {
			return err
		}
		if len(packages) > 0 {
			if err := tx.Create(&packages).Error; err != nil {
				return err
			}
		}
		if len(plans) > 0 {
			if err := tx.Create(&plans).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft deletes a quote scoped to its owner
func (r *quoteRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Quote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordView bumps the view counter and advances Sent quotes to Viewed.
// Paid quotes never move backwards.
func (r *quoteRepository) RecordView(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Quote{}).Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Quote{}).
			Where("id = ? AND status = ?", id, models.QuoteStatusSent).
			Update("status", models.QuoteStatusViewed).Error
	})
}

// SlugExists reports whether a slug is already taken
func (r *quoteRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Quote{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
