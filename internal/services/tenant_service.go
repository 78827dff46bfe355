package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// TenantService owns companies and their user records.
type TenantService struct {
	db     database.Database
	logger utils.Logger
}

func NewTenantService(db database.Database, logger utils.Logger) *TenantService {
	return &TenantService{db: db, logger: logger}
}

func (s *TenantService) GetCompany(companyID uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return &company, nil
}

func (s *TenantService) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *TenantService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *TenantService) ListUsers(companyID uint) ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("company_id = ?", companyID).Order("created_at asc").Find(&users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CountActiveUsers counts seats in use for the seat-limit check.
func (s *TenantService) CountActiveUsers(companyID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("company_id = ? AND status = ?", companyID, models.UserStatusActive).Count(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ChangePlan moves a company to a new plan tier and adjusts its seat cap.
// Seats already in use above the new cap stay active; only new invitations
// are blocked.
func (s *TenantService) ChangePlan(companyID uint, plan models.PlanTier) (*models.Company, error) {
	company, err := s.GetCompany(companyID)
	if err != nil {
		return nil, err
	}

	company.Plan = plan
	company.MaxUsers = plan.MaxUsers()
	if err := s.db.Save(company); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.logger.Info("company plan changed", utils.LogFields{
		"company_id": companyID,
		"plan":       string(plan),
		"max_users":  company.MaxUsers,
	})
	return company, nil
}

// SetAccountStatus toggles a company between active and disabled. Disabled
// companies keep their data; their users just cannot sign in.
func (s *TenantService) SetAccountStatus(companyID uint, status models.AccountStatus) error {
	company, err := s.GetCompany(companyID)
	if err != nil {
		return err
	}

	company.AccountStatus = status
	if err := s.db.Save(company); err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	s.logger.Info("account status changed", utils.LogFields{
		"company_id": companyID,
		"status":     string(status),
	})
	return nil
}

// RequestCancellation records the cancellation timestamp. Billing teardown
// happens out of band once the gateway confirms.
func (s *TenantService) RequestCancellation(companyID uint) error {
	company, err := s.GetCompany(companyID)
	if err != nil {
		return err
	}

	now := time.Now()
	company.CancellationRequestedAt = &now
	if err := s.db.Save(company); err != nil {
		return fmt.Errorf("failed to record cancellation: %w", err)
	}

	s.logger.Info("cancellation requested", utils.LogFields{"company_id": companyID})
	return nil
}

func (s *TenantService) UpdateUserRole(userID string, role models.UserRole) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	user.Role = role
	if err := s.db.Save(user); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func (s *TenantService) SetUserStatus(userID string, status models.UserStatus) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	user.Status = status
	if err := s.db.Save(user); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return nil
}
