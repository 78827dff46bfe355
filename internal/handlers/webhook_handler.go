package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// paymentEvent is the gateway's checkout-completed webhook body. The
// session id doubles as the delivery dedupe key.
type paymentEvent struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	CustomerID     string `json:"customerId"`
	SubscriptionID string `json:"subscriptionId"`
	Metadata       struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FullName    string `json:"fullName"`
		Company     string `json:"company"`
		Phone       string `json:"phone"`
		PlanName    string `json:"planName"`
		BillingType string `json:"billingType"`
	} `json:"metadata"`
}

// WebhookHandler receives payment gateway webhooks and drives provisioning.
// Deliveries are at-least-once, so every path through here must be safe to
// repeat.
type WebhookHandler struct {
	db            database.Database
	redis         database.RedisClient
	provisioning  *services.ProvisioningService
	webhookSecret string
	logger        utils.Logger
}

func NewWebhookHandler(db database.Database, redis database.RedisClient, provisioning *services.ProvisioningService, webhookSecret string, logger utils.Logger) *WebhookHandler {
	return &WebhookHandler{
		db:            db,
		redis:         redis,
		provisioning:  provisioning,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandlePaymentSucceeded processes a checkout-completed event. Returns 200
// with received:true on success or replay, 400 on a bad payload, 500 when
// provisioning fails after compensation so the gateway retries.
func (h *WebhookHandler) HandlePaymentSucceeded(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}

	if !h.verifySignature(c.GetHeader("X-Webhook-Signature"), body) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid webhook signature"})
		return
	}

	var event paymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: services.ErrInvalidTriggerPayload.Error()})
		return
	}

	payload, err := h.validate(&event)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if event.SessionID != "" {
		if processed := h.lookupProcessed(c, event.SessionID); processed != nil {
			c.JSON(http.StatusOK, gin.H{
				"received":  true,
				"userId":    processed.UserID,
				"companyId": processed.CompanyID,
			})
			return
		}
	}

	result, err := h.provisioning.ProvisionFromPayment(c.Request.Context(), *payload)
	if err != nil {
		if event.SessionID != "" {
			h.releaseClaim(c, event.SessionID)
		}
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrDuplicateAccount) {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	if event.SessionID != "" {
		h.recordEvent(&event, result)
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"userId":    result.UserID,
		"companyId": result.CompanyID,
	})
}

func (h *WebhookHandler) verifySignature(signature string, body []byte) bool {
	if h.webhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (h *WebhookHandler) validate(event *paymentEvent) (*services.SignupPayload, error) {
	meta := event.Metadata

	if meta.Email == "" || meta.Password == "" || meta.PlanName == "" {
		return nil, services.ErrMissingRequiredField
	}
	if !utils.ValidateEmail(meta.Email) {
		return nil, services.ErrInvalidTriggerPayload
	}
	if meta.BillingType != "" && !utils.ValidateBillingType(meta.BillingType) {
		return nil, services.ErrInvalidTriggerPayload
	}

	return &services.SignupPayload{
		Email:                meta.Email,
		Password:             meta.Password,
		Name:                 utils.SanitizeName(meta.FullName),
		CompanyName:          utils.SanitizeName(meta.Company),
		Phone:                meta.Phone,
		Plan:                 models.PlanTier(strings.ToLower(meta.PlanName)),
		BillingType:          strings.ToLower(meta.BillingType),
		StripeCustomerID:     event.CustomerID,
		StripeSubscriptionID: event.SubscriptionID,
	}, nil
}

// lookupProcessed consults the durable ledger first, then takes a redis
// claim to close the window between concurrent deliveries. Redis being down
// never blocks processing. A claim taken here must be released when
// provisioning fails, otherwise the retried delivery would be mistaken for
// a replay.
func (h *WebhookHandler) lookupProcessed(c *gin.Context, sessionID string) *models.WebhookEvent {
	var record models.WebhookEvent
	if err := h.db.Where("event_id = ?", sessionID).First(&record); err == nil {
		return &record
	}

	if h.redis != nil {
		claimed, err := h.redis.SetNX(c.Request.Context(), "webhook:event:"+sessionID, "1", 24*time.Hour)
		if err == nil && !claimed {
			return &models.WebhookEvent{EventID: sessionID}
		}
	}

	return nil
}

func (h *WebhookHandler) releaseClaim(c *gin.Context, sessionID string) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(c.Request.Context(), "webhook:event:"+sessionID); err != nil {
		h.logger.Warn("failed to release webhook claim", utils.LogFields{
			"event_id": sessionID,
			"error":    err.Error(),
		})
	}
}

func (h *WebhookHandler) recordEvent(event *paymentEvent, result *services.ProvisionResult) {
	record := &models.WebhookEvent{
		EventID:     event.SessionID,
		EventType:   event.EventType,
		UserID:      result.UserID,
		CompanyID:   result.CompanyID,
		ProcessedAt: time.Now(),
	}
	if err := h.db.Create(record); err != nil {
		h.logger.Warn("failed to record webhook event", utils.LogFields{
			"event_id": event.SessionID,
			"error":    err.Error(),
		})
	}
}
