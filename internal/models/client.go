package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
)

type ClientStage string

const (
	StageNew    ClientStage = "New"
	StageClosed ClientStage = "Closed"
)

// Client is a prospect or customer in the pipeline, optionally linked to a
// GoHighLevel contact. SyncStatus reflects the outcome of the most recent
// sync attempt; a nil GHLContactID means the record has never been exported.
type Client struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	CompanyID            uint            `gorm:"not null;index" json:"company_id"`
	UserID               string          `gorm:"type:varchar(100);not null;index" json:"user_id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	Email                string          `gorm:"type:varchar(255)" json:"email"`
	Phone                string          `gorm:"type:varchar(50)" json:"phone"`
	Stage                ClientStage     `gorm:"type:varchar(50);default:'New'" json:"stage"`
	GHLContactID         *string         `gorm:"column:ghl_contact_id;type:varchar(255);index" json:"ghl_contact_id,omitempty"`
	SyncStatus           *SyncStatus     `gorm:"type:varchar(20)" json:"sync_status,omitempty"`
	TotalRevenue         decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_revenue"`
	RecurringRevenue     decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"recurring_revenue"`
	OneTimeRevenue       decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"one_time_revenue"`
	MonthlyContractValue decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"monthly_contract_value"`
	AnnualContractValue  decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"annual_contract_value"`
	CloseDate            *time.Time      `json:"close_date,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`

	Company      Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Activities   []Activity    `gorm:"foreignKey:ClientID" json:"activities,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:ClientID" json:"appointments,omitempty"`
}

// IsSynced reports whether the client is linked to an external contact.
func (c *Client) IsSynced() bool {
	return c.GHLContactID != nil && *c.GHLContactID != ""
}

func (c *Client) TableName() string {
	return "clients"
}
