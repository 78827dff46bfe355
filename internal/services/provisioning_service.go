package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// SignupPayload is a validated provisioning request. Handlers are
// responsible for rejecting malformed input before it gets here.
type SignupPayload struct {
	Email                string
	Password             string
	Name                 string
	CompanyName          string
	Phone                string
	Plan                 models.PlanTier
	BillingType          string
	StripeCustomerID     string
	StripeSubscriptionID string
}

// ProvisionResult reports what a completed provisioning run created.
type ProvisionResult struct {
	UserID        string `json:"userId"`
	CompanyID     uint   `json:"companyId"`
	AlreadyExists bool   `json:"alreadyExists,omitempty"`
}

// provisionOptions vary between the paid-signup and sponsored paths.
type provisionOptions struct {
	emailConfirmed bool
	role           models.UserRole
	sponsorUserID  string
}

// ProvisioningService runs the account creation workflow: identity account,
// then company, then user record. Each step registers an undo; when a later
// step fails, the undos run in reverse order so no partial account survives.
type ProvisioningService struct {
	db       database.Database
	identity IdentityProvider
	tenants  *TenantService
	logger   utils.Logger
}

func NewProvisioningService(db database.Database, identity IdentityProvider, tenants *TenantService, logger utils.Logger) *ProvisioningService {
	return &ProvisioningService{db: db, identity: identity, tenants: tenants, logger: logger}
}

// ProvisionFromPayment creates a full account from a confirmed payment. The
// identity starts unconfirmed so the customer still verifies their email.
// Re-delivery of the same signup is a no-op success: when the email already
// has an identity account, the existing ids are returned unchanged.
func (s *ProvisioningService) ProvisionFromPayment(ctx context.Context, payload SignupPayload) (*ProvisionResult, error) {
	return s.provision(ctx, payload, provisionOptions{
		emailConfirmed: false,
		role:           models.RoleManager,
	})
}

// CreateSponsoredAccount provisions a standalone company on behalf of a
// sponsoring user. The identity is confirmed immediately; the account is
// gifted when billed through GHL.
func (s *ProvisioningService) CreateSponsoredAccount(ctx context.Context, sponsorUserID string, payload SignupPayload) (*ProvisionResult, error) {
	return s.provision(ctx, payload, provisionOptions{
		emailConfirmed: true,
		role:           models.RoleSalesRep,
		sponsorUserID:  sponsorUserID,
	})
}

func (s *ProvisioningService) provision(ctx context.Context, payload SignupPayload, opts provisionOptions) (*ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	existing, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityCreationFailed, err)
	}
	if existing != nil {
		user, err := s.tenants.GetUserByEmail(email)
		if err != nil {
			// Identity account without a local record means a previous run
			// was interrupted after compensation failed. Surface it rather
			// than creating a duplicate identity.
			return nil, fmt.Errorf("%w: identity exists for %s but no user record", ErrDuplicateAccount, email)
		}
		s.logger.Info("provisioning skipped, account exists", utils.LogFields{
			"email":      email,
			"user_id":    user.ID,
			"company_id": user.CompanyID,
		})
		return &ProvisionResult{UserID: user.ID, CompanyID: user.CompanyID, AlreadyExists: true}, nil
	}

	var undos []func() error
	compensate := func() error {
		var firstErr error
		for i := len(undos) - 1; i >= 0; i-- {
			if err := undos[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	identityUser, err := s.identity.CreateUser(ctx, email, payload.Password, opts.emailConfirmed)
	if err != nil {
		return nil, &StepError{Step: "identity", Err: fmt.Errorf("%w: %v", ErrIdentityCreationFailed, err)}
	}
	undos = append(undos, func() error {
		return s.identity.DeleteUser(context.WithoutCancel(ctx), identityUser.ID)
	})

	company, err := s.createCompany(payload, identityUser.ID, opts.sponsorUserID)
	if err != nil {
		stepErr := &StepError{Step: "company", Err: fmt.Errorf("%w: %v", ErrCompanyCreationFailed, err)}
		stepErr.CompensateErr = compensate()
		s.logProvisioningFailure(email, stepErr)
		return nil, stepErr
	}
	undos = append(undos, func() error {
		return s.db.Delete(&models.Company{}, company.ID)
	})

	user := &models.User{
		ID:        identityUser.ID,
		CompanyID: company.ID,
		Email:     email,
		Name:      payload.Name,
		Role:      opts.role,
		Status:    models.UserStatusActive,
	}
	if err := s.db.Create(user); err != nil {
		stepErr := &StepError{Step: "user record", Err: fmt.Errorf("%w: %v", ErrUserRecordCreationFailed, err)}
		stepErr.CompensateErr = compensate()
		s.logProvisioningFailure(email, stepErr)
		return nil, stepErr
	}

	s.logger.Info("account provisioned", utils.LogFields{
		"user_id":    user.ID,
		"company_id": company.ID,
		"plan":       string(company.Plan),
		"gifted":     company.IsGiftedAccount,
	})
	return &ProvisionResult{UserID: user.ID, CompanyID: company.ID}, nil
}

// CreateTeamMember adds a user to an existing company, subject to the seat
// cap. The identity account is rolled back if the local record fails.
func (s *ProvisioningService) CreateTeamMember(ctx context.Context, companyID uint, email, password, name string, role models.UserRole) (*models.User, error) {
	company, err := s.tenants.GetCompany(companyID)
	if err != nil {
		return nil, err
	}

	active, err := s.tenants.CountActiveUsers(companyID)
	if err != nil {
		return nil, err
	}
	if int(active) >= company.MaxUsers {
		return nil, fmt.Errorf("%w: %d of %d seats in use", ErrSeatLimitReached, active, company.MaxUsers)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.identity.GetUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityCreationFailed, err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, email)
	}

	identityUser, err := s.identity.CreateUser(ctx, email, password, true)
	if err != nil {
		return nil, &StepError{Step: "identity", Err: fmt.Errorf("%w: %v", ErrIdentityCreationFailed, err)}
	}

	if role == "" {
		role = models.RoleSalesRep
	}
	user := &models.User{
		ID:        identityUser.ID,
		CompanyID: companyID,
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    models.UserStatusActive,
	}
	if err := s.db.Create(user); err != nil {
		stepErr := &StepError{Step: "user record", Err: fmt.Errorf("%w: %v", ErrUserRecordCreationFailed, err)}
		stepErr.CompensateErr = s.identity.DeleteUser(context.WithoutCancel(ctx), identityUser.ID)
		s.logProvisioningFailure(email, stepErr)
		return nil, stepErr
	}

	s.logger.Info("team member created", utils.LogFields{
		"user_id":    user.ID,
		"company_id": companyID,
		"role":       string(role),
	})
	return user, nil
}

// DeleteUser removes a user record and its identity account. The identity
// delete runs last so a failure there leaves a retryable state.
func (s *ProvisioningService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.tenants.GetUser(userID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.User{}, "id = ?", user.ID); err != nil {
		return fmt.Errorf("failed to delete user record: %w", err)
	}

	if err := s.identity.DeleteUser(ctx, user.ID); err != nil {
		s.logger.Error("identity delete failed after record removal", utils.LogFields{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrIdentityDeletionFailed, err)
	}

	s.logger.Info("user deleted", utils.LogFields{"user_id": user.ID, "company_id": user.CompanyID})
	return nil
}

func (s *ProvisioningService) createCompany(payload SignupPayload, ownerID, sponsorUserID string) (*models.Company, error) {
	plan := payload.Plan
	if !plan.Valid() {
		plan = models.PlanElite
	}

	name := payload.CompanyName
	if name == "" {
		name = payload.Name
	}

	gifted := strings.EqualFold(payload.BillingType, "ghl")
	subscriptionType := string(plan)
	if gifted {
		subscriptionType = "gifted"
	}

	company := &models.Company{
		Name:             name,
		OwnerID:          ownerID,
		Plan:             plan,
		MaxUsers:         plan.MaxUsers(),
		SubscriptionType: subscriptionType,
		IsGiftedAccount:  gifted,
		AccountStatus:    models.AccountStatusActive,
	}
	if sponsorUserID != "" {
		company.SponsoredByUserID = &sponsorUserID
	}
	if gifted {
		now := time.Now()
		company.GiftedAt = &now
	} else {
		if payload.StripeCustomerID != "" {
			company.StripeCustomerID = &payload.StripeCustomerID
		}
		if payload.StripeSubscriptionID != "" {
			company.StripeSubscriptionID = &payload.StripeSubscriptionID
		}
	}

	if err := s.db.Create(company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *ProvisioningService) logProvisioningFailure(email string, stepErr *StepError) {
	fields := utils.LogFields{
		"email": email,
		"step":  stepErr.Step,
		"error": stepErr.Err.Error(),
	}
	if stepErr.CompensateErr != nil {
		fields["rollback_error"] = stepErr.CompensateErr.Error()
	}
	s.logger.Error("provisioning failed, compensations applied", fields)
}
