package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// AccountHandler covers the admin account-creation endpoints and company
// administration for signed-in owners and admins.
type AccountHandler struct {
	provisioning *services.ProvisioningService
	tenants      *services.TenantService
	logger       utils.Logger
}

func NewAccountHandler(provisioning *services.ProvisioningService, tenants *services.TenantService, logger utils.Logger) *AccountHandler {
	return &AccountHandler{provisioning: provisioning, tenants: tenants, logger: logger}
}

type createTeamMemberRequest struct {
	CompanyID uint   `json:"companyId" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Name      string `json:"name"`
	Password  string `json:"password" binding:"required"`
}

// CreateTeamMember adds a Sales Rep to an existing company.
func (h *AccountHandler) CreateTeamMember(c *gin.Context) {
	var req createTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMissingRequiredField.Error(), "message": err.Error()})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.ValidatePassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters with a letter and a digit"})
		return
	}

	user, err := h.provisioning.CreateTeamMember(c.Request.Context(), req.CompanyID, req.Email, req.Password, utils.SanitizeName(req.Name), models.RoleSalesRep)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSeatLimitReached), errors.Is(err, services.ErrDuplicateAccount):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCompanyNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userId": user.ID})
}

type standaloneAccountRequest struct {
	SponsorUserID string `json:"sponsorUserId" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Name          string `json:"name"`
	CompanyName   string `json:"companyName"`
	Password      string `json:"password" binding:"required"`
	BillingType   string `json:"billingType" binding:"required"`
	Plan          string `json:"plan" binding:"required"`
}

// CreateStandaloneAccount provisions a sponsored company with its own owner
// seat. Billed through GHL it becomes a gifted account.
func (h *AccountHandler) CreateStandaloneAccount(c *gin.Context) {
	var req standaloneAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMissingRequiredField.Error(), "message": err.Error()})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.ValidateBillingType(req.BillingType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "billingType must be ghl or stripe"})
		return
	}

	result, err := h.provisioning.CreateSponsoredAccount(c.Request.Context(), req.SponsorUserID, services.SignupPayload{
		Email:       req.Email,
		Password:    req.Password,
		Name:        utils.SanitizeName(req.Name),
		CompanyName: utils.SanitizeName(req.CompanyName),
		Plan:        models.PlanTier(strings.ToLower(req.Plan)),
		BillingType: strings.ToLower(req.BillingType),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrDuplicateAccount) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userId": result.UserID, "companyId": result.CompanyID})
}

type deleteUserRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *AccountHandler) DeleteUser(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMissingRequiredField.Error(), "message": err.Error()})
		return
	}

	target, err := h.tenants.GetUser(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		return
	}
	if target.ID == c.GetString("user_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if err := h.provisioning.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.tenants.ListUsers(c.GetUint("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

type changePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (h *AccountHandler) ChangePlan(c *gin.Context) {
	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if !utils.ValidatePlan(req.Plan) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan"})
		return
	}

	company, err := h.tenants.ChangePlan(c.GetUint("company_id"), models.PlanTier(strings.ToLower(req.Plan)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "company": company})
}

type accountStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AccountHandler) SetAccountStatus(c *gin.Context) {
	var req accountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	status := models.AccountStatus(req.Status)
	if status != models.AccountStatusActive && status != models.AccountStatusDisabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or disabled"})
		return
	}

	if err := h.tenants.SetAccountStatus(c.GetUint("company_id"), status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AccountHandler) RequestCancellation(c *gin.Context) {
	if err := h.tenants.RequestCancellation(c.GetUint("company_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AccountHandler) UpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if !utils.ValidateRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	target, err := h.tenants.GetUser(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if target.CompanyID != c.GetUint("company_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "user belongs to another company"})
		return
	}

	if err := h.tenants.UpdateUserRole(target.ID, models.UserRole(req.Role)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
