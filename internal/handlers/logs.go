package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/models"
)

// GetLogs returns the most recent dispatch records
func (h *Handlers) GetLogs(c *gin.Context) {
	limitParam := c.DefaultQuery("limit", strconv.Itoa(history.DefaultQueryLimit))
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_limit",
			Message: "Limit must be a positive integer",
			Code:    http.StatusBadRequest,
		})
		return
	}

	c.JSON(http.StatusOK, h.store.Query(limit))
}

// GetLog returns a single dispatch record by ID
func (h *Handlers) GetLog(c *gin.Context) {
	rec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Log not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetStats returns the running dispatch counters
func (h *Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}
