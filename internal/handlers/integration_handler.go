package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// ghlOAuthScopes are requested when connecting through the marketplace app.
var ghlOAuthScopes = []string{"contacts.readonly", "contacts.write", "calendars.readonly", "calendars/events.write"}

// IntegrationHandler manages GoHighLevel connections: direct API key setup
// and the marketplace OAuth flow.
type IntegrationHandler struct {
	integrations *services.IntegrationService
	redis        database.RedisClient
	oauthConfig  *oauth2.Config
	logger       utils.Logger
}

func NewIntegrationHandler(integrations *services.IntegrationService, redis database.RedisClient, cfg *config.GHLConfig, logger utils.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		integrations: integrations,
		redis:        redis,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       ghlOAuthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://marketplace.gohighlevel.com/oauth/chooselocation",
				TokenURL: "https://services.leadconnectorhq.com/oauth/token",
			},
		},
		logger: logger,
	}
}

type connectRequest struct {
	APIKey     string `json:"api_key" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
}

// Connect stores an API key credential for the caller's company.
func (h *IntegrationHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if !utils.ValidateAPIKey(req.APIKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed API key"})
		return
	}

	integration, err := h.integrations.UpsertIntegration(c.GetUint("company_id"), req.APIKey, req.LocationID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "integration": integration})
}

// Status reports whether the company has an active connection.
func (h *IntegrationHandler) Status(c *gin.Context) {
	integration, err := h.integrations.GetActiveIntegration(c.GetUint("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if integration == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "connected": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connected":    true,
		"location_id":  integration.LocationID,
		"last_sync_at": integration.LastSyncAt,
	})
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	if err := h.integrations.Disconnect(c.GetUint("company_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "integration disconnected"})
}

// OAuthConnect starts the marketplace flow. The state token binds the
// callback to the initiating company.
func (h *IntegrationHandler) OAuthConnect(c *gin.Context) {
	state := uuid.New().String()

	if h.redis != nil {
		companyID := strconv.FormatUint(uint64(c.GetUint("company_id")), 10)
		if err := h.redis.Set(c.Request.Context(), "oauth:state:"+state, companyID, 10*time.Minute); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate oauth flow"})
			return
		}
	}

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{"success": true, "auth_url": url})
}

// OAuthCallback exchanges the authorization code and stores the tokens.
func (h *IntegrationHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	locationID := c.Query("locationId")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code or state"})
		return
	}

	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "oauth flow unavailable"})
		return
	}

	companyIDStr, err := h.redis.Get(c.Request.Context(), "oauth:state:"+state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired state"})
		return
	}
	_ = h.redis.Del(c.Request.Context(), "oauth:state:"+state)

	companyID, err := strconv.ParseUint(companyIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	token, err := h.oauthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("oauth exchange failed", utils.LogFields{"error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
		return
	}

	integration, err := h.integrations.StoreOAuthTokens(uint(companyID), locationID, token.AccessToken, token.RefreshToken, token.Expiry, ghlOAuthScopes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "integration_id": integration.ID})
}
