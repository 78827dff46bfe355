package models

import (
	"time"

	"gorm.io/gorm"
)

type Activity struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"not null;index" json:"company_id"`
	ClientID  uint           `gorm:"not null;index" json:"client_id"`
	UserID    string         `gorm:"type:varchar(100);not null" json:"user_id"`
	Type      string         `gorm:"type:varchar(50);not null" json:"type"`
	Notes     string         `gorm:"type:text" json:"notes"`
	LoggedAt  time.Time      `gorm:"not null" json:"logged_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (a *Activity) TableName() string {
	return "activities"
}
