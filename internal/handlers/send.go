package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"email-dispatch-go/internal/dispatch"
	"email-dispatch-go/internal/models"
	"email-dispatch-go/internal/queue"
)

// SendEmail dispatches one email synchronously and echoes the record
func (h *Handlers) SendEmail(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	rec, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}
		// The failed attempt is already recorded; surface its reason.
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "send_failed",
			Message: rec.ErrorMessage,
			Code:    http.StatusBadGateway,
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// SendEmailAsync publishes one email request to the queue topic
func (h *Handlers) SendEmailAsync(c *gin.Context) {
	if h.bridge == nil || !h.bridge.Enabled() {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "queue_disabled",
			Message: "Queue integration is not available",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.bridge.Publish(c.Request.Context(), req); err != nil {
		if errors.Is(err, queue.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "queue_disabled",
				Message: "Queue integration is not available",
				Code:    http.StatusServiceUnavailable,
			})
			return
		}
		logrus.Errorf("Failed to publish email request: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "publish_failed",
			Message: "Failed to publish email request",
			Code:    http.StatusBadGateway,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "to_email": req.ToEmail})
}
