package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors a seller identity issued by the hosted identity provider.
// The ID is the provider's subject claim, not a local auto-increment.
type User struct {
	ID              string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email           string         `gorm:"type:varchar(200);index" json:"email"`
	StripeAccountID string         `gorm:"type:varchar(64);default:''" json:"stripe_account_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasStripeAccount reports whether the seller completed Stripe payout onboarding.
func (u *User) HasStripeAccount() bool {
	return u != nil && u.StripeAccountID != ""
}

// UpsertUser creates the user row if missing and refreshes the email otherwise.
func UpsertUser(db *gorm.DB, id, email string) (*User, error) {
	var u User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			u = User{ID: id, Email: email}
			if err := db.Create(&u).Error; err != nil {
				return nil, err
			}
			return &u, nil
		}
		return nil, err
	}
	if email != "" && u.Email != email {
		u.Email = email
		if err := db.Save(&u).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}
