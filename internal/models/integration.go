package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GHLIntegration holds a company's GoHighLevel credential. At most one
// active record per company; the write path deactivates older rows rather
// than relying on a database constraint.
type GHLIntegration struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CompanyID      uint           `gorm:"not null;index" json:"company_id"`
	APIKey         string         `gorm:"type:text" json:"-"`
	LocationID     string         `gorm:"type:varchar(255);not null" json:"location_id"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	Scopes         pq.StringArray `gorm:"type:text[]" json:"scopes,omitempty"`
	AccessToken    string         `gorm:"type:text" json:"-"`
	RefreshToken   string         `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time     `json:"token_expires_at,omitempty"`
	LastSyncAt     *time.Time     `json:"last_sync_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (i *GHLIntegration) TableName() string {
	return "ghl_integrations"
}
