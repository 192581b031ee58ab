package repository

import (
	"github.com/quotapay/quotapay/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert creates the user row on first sight and refreshes the email after
func (r *userRepository) Upsert(id, email string) (*models.User, error) {
	return models.UpsertUser(r.db, id, email)
}

// GetByID retrieves a user by the identity provider subject
func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetStripeAccount stores the connected Stripe account id for payouts
func (r *userRepository) SetStripeAccount(userID, accountID string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("stripe_account_id", accountID).Error
}

// GetSettings returns existing settings or creates defaults
func (r *userRepository) GetSettings(userID string) (*models.UserSettings, error) {
	return models.GetOrCreateUserSettings(r.db, userID)
}

// SaveSettings persists the full settings row
func (r *userRepository) SaveSettings(settings *models.UserSettings) error {
	return r.db.Save(settings).Error
}

// SetFlutterwaveSubaccount stores the payout subaccount and switches the
// seller's preferred rail to Flutterwave in one write.
func (r *userRepository) SetFlutterwaveSubaccount(userID, subaccountID string) error {
	return r.db.Model(&models.UserSettings{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"flutterwave_subaccount_id": subaccountID,
			"preferred_provider":        models.PaymentProviderFlutterwave,
		}).Error
}
