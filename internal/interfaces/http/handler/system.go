package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-level API endpoints
type SystemHandler struct {
	BaseHandler
	appName string
	env     string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(appName, env string) *SystemHandler {
	return &SystemHandler{
		appName: appName,
		env:     env,
	}
}

// Ping answers a liveness probe
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// GetSystemInfo returns basic runtime information
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, gin.H{
		"app":        h.appName,
		"env":        h.env,
		"go_version": runtime.Version(),
		"time":       time.Now().Format(time.RFC3339),
	})
}
