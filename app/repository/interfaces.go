package repository

import (
	"github.com/quotapay/quotapay/app/models"
	"gorm.io/gorm"
)

// QuoteRepository defines the interface for quote-related database operations
type QuoteRepository interface {
	Create(quote *models.Quote) error
	GetByID(id string) (*models.Quote, error)
	GetByIDForUser(id, userID string) (*models.Quote, error)
	GetBySlug(slug string) (*models.Quote, error)
	ListByUser(userID string, offset, limit int) ([]models.Quote, error)
	CountByUser(userID string) (int64, error)
	Update(quote *models.Quote) error
	ReplacePricing(quoteID string, packages []models.QuotePackage, plans []models.PaymentPlan) error
	Delete(id, userID string) error
	RecordView(id string) error
	SlugExists(slug string) (bool, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Upsert(id, email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	SetStripeAccount(userID, accountID string) error
	GetSettings(userID string) (*models.UserSettings, error)
	SaveSettings(settings *models.UserSettings) error
	SetFlutterwaveSubaccount(userID, subaccountID string) error
}

// Repositories holds all repository instances
type Repositories struct {
	Quote QuoteRepository
	User  UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Quote: NewQuoteRepository(db),
		User:  NewUserRepository(db),
	}
}
