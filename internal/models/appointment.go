package models

import (
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CompanyID  uint           `gorm:"not null;index" json:"company_id"`
	ClientID   uint           `gorm:"not null;index" json:"client_id"`
	UserID     string         `gorm:"type:varchar(100);not null" json:"user_id"`
	Title      string         `gorm:"type:varchar(255);not null" json:"title"`
	StartTime  time.Time      `gorm:"not null" json:"start_time"`
	EndTime    time.Time      `gorm:"not null" json:"end_time"`
	GHLEventID *string        `gorm:"column:ghl_event_id;type:varchar(255)" json:"ghl_event_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (a *Appointment) TableName() string {
	return "appointments"
}
