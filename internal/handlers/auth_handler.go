package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// AuthHandler issues API tokens for the admin surface. End-user sign-in
// happens against the identity provider directly; this path exists for
// service-to-service and back-office access.
type AuthHandler struct {
	tenants    *services.TenantService
	encryption *services.EncryptionService
	jwt        *services.JWTService
	logger     utils.Logger
}

func NewAuthHandler(tenants *services.TenantService, encryption *services.EncryptionService, jwt *services.JWTService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{tenants: tenants, encryption: encryption, jwt: jwt, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	user, err := h.tenants.GetUserByEmail(req.Email)
	if err != nil || user.PasswordHash == "" || !h.encryption.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.CompanyID, user.Email, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.logger.Info("user logged in", utils.LogFields{"user_id": user.ID, "company_id": user.CompanyID})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.tenants.GetUser(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
