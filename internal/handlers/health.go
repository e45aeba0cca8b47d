package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"email-dispatch-go/internal/models"
)

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := models.HealthResponse{
		Status:         "healthy",
		Service:        h.serviceName,
		Timestamp:      time.Now().UTC(),
		SMTPConfigured: h.mailer != nil && h.mailer.Configured(),
		KafkaEnabled:   h.bridge != nil && h.bridge.Enabled(),
		Metrics:        make(map[string]string),
	}

	if h.mailer != nil && h.mailer.Verified() {
		response.Metrics["smtp"] = "verified"
	} else {
		response.Metrics["smtp"] = "unverified"
	}

	if h.monitor != nil && h.monitor.IsRunning() {
		response.Metrics["monitor"] = "running"
	} else {
		response.Metrics["monitor"] = "stopped"
	}

	c.JSON(http.StatusOK, response)
}
