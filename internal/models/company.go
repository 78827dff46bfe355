package models

import (
	"time"

	"gorm.io/gorm"
)

type PlanTier string

const (
	PlanSolo  PlanTier = "solo"
	PlanTeam  PlanTier = "team"
	PlanElite PlanTier = "elite"
)

// MaxUsers returns the seat limit for a plan tier. Unknown tiers get the
// elite limit, matching how upgrades are sold.
func (p PlanTier) MaxUsers() int {
	switch p {
	case PlanSolo:
		return 1
	case PlanTeam:
		return 5
	default:
		return 10
	}
}

func (p PlanTier) Valid() bool {
	switch p {
	case PlanSolo, PlanTeam, PlanElite:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusDisabled AccountStatus = "disabled"
)

type Company struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	Name                    string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	OwnerID                 string         `gorm:"type:varchar(100);not null;index" json:"owner_id"`
	Plan                    PlanTier       `gorm:"type:varchar(50);not null" json:"plan"`
	MaxUsers                int            `gorm:"not null;default:1" json:"max_users"`
	SubscriptionType        string         `gorm:"type:varchar(50)" json:"subscription_type"`
	StripeCustomerID        *string        `gorm:"type:varchar(255)" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID    *string        `gorm:"type:varchar(255)" json:"stripe_subscription_id,omitempty"`
	IsGiftedAccount         bool           `gorm:"default:false" json:"is_gifted_account"`
	SponsoredByUserID       *string        `gorm:"type:varchar(100)" json:"sponsored_by_user_id,omitempty"`
	GiftedAt                *time.Time     `json:"gifted_at,omitempty"`
	AccountStatus           AccountStatus  `gorm:"type:varchar(20);default:active" json:"account_status"`
	CancellationRequestedAt *time.Time     `json:"cancellation_requested_at,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`

	Users []User `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
}

// IsBilled reports whether the company has an attached subscription.
func (c *Company) IsBilled() bool {
	return c.StripeSubscriptionID != nil && *c.StripeSubscriptionID != ""
}

func (c *Company) TableName() string {
	return "companies"
}
