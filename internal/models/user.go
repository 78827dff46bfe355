package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleOwner    UserRole = "Owner"
	RoleManager  UserRole = "Manager"
	RoleAdmin    UserRole = "Admin"
	RoleSalesRep UserRole = "Sales Rep"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is the application profile row. Its ID is the identity provider's
// user id, so a User always maps to exactly one Identity.
type User struct {
	ID           string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	CompanyID    uint           `gorm:"not null;index" json:"company_id"`
	Email        string         `gorm:"type:varchar(255);not null;unique" json:"email" validate:"required,email"`
	Name         string         `gorm:"type:varchar(255)" json:"name"`
	Role         UserRole       `gorm:"type:varchar(50);default:'Sales Rep'" json:"role"`
	Status       UserStatus     `gorm:"type:varchar(20);default:active" json:"status"`
	PasswordHash string         `gorm:"type:varchar(255)" json:"-"`
	Settings     JSON           `gorm:"type:jsonb" json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Company Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Clients []Client `gorm:"foreignKey:UserID" json:"clients,omitempty"`
}

func (u *User) TableName() string {
	return "users"
}
