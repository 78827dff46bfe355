package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
)

type HealthHandler struct {
	db      database.Database
	started time.Time
	version string
}

func NewHealthHandler(db database.Database, version string) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready verifies the database connection so load balancers can hold traffic
// during startup.
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
