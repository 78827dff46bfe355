package models

import (
	"time"
)

// WebhookEvent is the idempotency ledger for payment webhook deliveries.
// The gateway delivers at-least-once; an event id that is already here has
// been fully processed and must not be provisioned again.
type WebhookEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"type:varchar(255);unique;not null" json:"event_id"`
	EventType   string    `gorm:"type:varchar(100);not null" json:"event_type"`
	UserID      string    `gorm:"type:varchar(100)" json:"user_id"`
	CompanyID   uint      `json:"company_id"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (w *WebhookEvent) TableName() string {
	return "webhook_events"
}
