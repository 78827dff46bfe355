package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// IntegrationService manages GoHighLevel credentials and the health gate
// every sync operation passes through.
type IntegrationService struct {
	db         database.Database
	encryption *EncryptionService
	logger     utils.Logger
}

func NewIntegrationService(db database.Database, encryption *EncryptionService, logger utils.Logger) *IntegrationService {
	return &IntegrationService{db: db, encryption: encryption, logger: logger}
}

// IsIntegrationActive reports whether the company has a usable GoHighLevel
// connection. It never returns an error; lookup failures read as inactive so
// sync paths degrade to a silent no-op.
func (s *IntegrationService) IsIntegrationActive(companyID uint) bool {
	integration, err := s.GetActiveIntegration(companyID)
	if err != nil {
		return false
	}
	return integration != nil && integration.APIKey != ""
}

// GetActiveIntegration returns the company's active integration, or nil when
// none exists.
func (s *IntegrationService) GetActiveIntegration(companyID uint) (*models.GHLIntegration, error) {
	var integration models.GHLIntegration
	err := s.db.Where("company_id = ? AND is_active = ?", companyID, true).
		Order("created_at desc").First(&integration)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load integration: %w", err)
	}
	return &integration, nil
}

// ResolveAPIKey decrypts the stored credential for outbound API calls.
func (s *IntegrationService) ResolveAPIKey(companyID uint) (string, error) {
	integration, err := s.GetActiveIntegration(companyID)
	if err != nil {
		return "", err
	}
	if integration == nil || integration.APIKey == "" {
		return "", ErrIntegrationNotActive
	}

	apiKey, err := s.encryption.Decrypt(integration.APIKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt API key: %w", err)
	}
	return apiKey, nil
}

// UpsertIntegration stores a new credential for the company. Any previously
// active rows are deactivated in the same transaction so at most one remains.
func (s *IntegrationService) UpsertIntegration(companyID uint, apiKey, locationID string, scopes []string) (*models.GHLIntegration, error) {
	encrypted, err := s.encryption.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt API key: %w", err)
	}

	integration := &models.GHLIntegration{
		CompanyID:  companyID,
		APIKey:     encrypted,
		LocationID: locationID,
		IsActive:   true,
		Scopes:     pq.StringArray(scopes),
	}

	err = s.db.Transaction(func(tx database.Database) error {
		if err := tx.Model(&models.GHLIntegration{}).
			Where("company_id = ? AND is_active = ?", companyID, true).
			Update("is_active", false); err != nil {
			return err
		}
		return tx.Create(integration)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store integration: %w", err)
	}

	s.logger.Info("GHL integration connected", utils.LogFields{
		"company_id":  companyID,
		"location_id": locationID,
	})
	return integration, nil
}

// StoreOAuthTokens records tokens obtained through the marketplace OAuth
// flow. The access token doubles as the API credential.
func (s *IntegrationService) StoreOAuthTokens(companyID uint, locationID, accessToken, refreshToken string, expiresAt time.Time, scopes []string) (*models.GHLIntegration, error) {
	encryptedAccess, err := s.encryption.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encryptedRefresh, err := s.encryption.Encrypt(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	integration := &models.GHLIntegration{
		CompanyID:      companyID,
		APIKey:         encryptedAccess,
		LocationID:     locationID,
		IsActive:       true,
		Scopes:         pq.StringArray(scopes),
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: &expiresAt,
	}

	err = s.db.Transaction(func(tx database.Database) error {
		if err := tx.Model(&models.GHLIntegration{}).
			Where("company_id = ? AND is_active = ?", companyID, true).
			Update("is_active", false); err != nil {
			return err
		}
		return tx.Create(integration)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store integration: %w", err)
	}

	return integration, nil
}

// Disconnect deactivates the company's integration. Synced client rows keep
// their contact ids so a later reconnect resumes without re-importing.
func (s *IntegrationService) Disconnect(companyID uint) error {
	if err := s.db.Model(&models.GHLIntegration{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Update("is_active", false); err != nil {
		return fmt.Errorf("failed to disconnect integration: %w", err)
	}

	s.logger.Info("GHL integration disconnected", utils.LogFields{"company_id": companyID})
	return nil
}

// TouchLastSync stamps the active integration after a completed import.
func (s *IntegrationService) TouchLastSync(companyID uint) error {
	now := time.Now()
	return s.db.Model(&models.GHLIntegration{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Update("last_sync_at", &now)
}
