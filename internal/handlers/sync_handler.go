package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// SyncHandler exposes the GoHighLevel sync operations.
type SyncHandler struct {
	sync   *services.SyncService
	logger utils.Logger
}

func NewSyncHandler(sync *services.SyncService, logger utils.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

// ImportContacts runs a full contact import for the caller's company.
func (h *SyncHandler) ImportContacts(c *gin.Context) {
	summary, err := h.sync.ImportAllContacts(c.Request.Context(), c.GetUint("company_id"), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func (h *SyncHandler) SyncClient(c *gin.Context) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	synced, err := h.sync.SyncClient(c.Request.Context(), c.GetUint("company_id"), uint(clientID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !synced {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "no active integration"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "client synced"})
}

// SyncActivity mirrors an existing activity onto the linked contact.
func (h *SyncHandler) SyncActivity(c *gin.Context) {
	activityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	mirrored, err := h.sync.SyncActivity(c.Request.Context(), c.GetUint("company_id"), uint(activityID))
	if err != nil {
		if errors.Is(err, services.ErrClientNotSynced) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !mirrored {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "no active integration"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "activity synced"})
}

// SyncAppointment books an existing appointment on the external calendar.
func (h *SyncHandler) SyncAppointment(c *gin.Context) {
	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	booked, err := h.sync.SyncAppointment(c.Request.Context(), c.GetUint("company_id"), uint(appointmentID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClientNotSynced), errors.Is(err, services.ErrNoCalendarsFound):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if !booked {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "no active integration"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "appointment synced"})
}

func (h *SyncHandler) SyncPending(c *gin.Context) {
	synced, err := h.sync.SyncPendingClients(c.Request.Context(), c.GetUint("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "synced": synced})
}

type logActivityRequest struct {
	Type  string `json:"type" binding:"required"`
	Notes string `json:"notes"`
}

func (h *SyncHandler) LogActivity(c *gin.Context) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	activity, err := h.sync.LogActivity(c.Request.Context(), c.GetUint("company_id"), uint(clientID), c.GetString("user_id"), req.Type, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "activity": activity})
}

type createAppointmentRequest struct {
	Title     string    `json:"title" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (h *SyncHandler) CreateAppointment(c *gin.Context) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	appointment, err := h.sync.CreateAppointment(c.Request.Context(), c.GetUint("company_id"), uint(clientID), c.GetString("user_id"), req.Title, req.StartTime, req.EndTime)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClientNotSynced):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoCalendarsFound):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "appointment": appointment})
}
