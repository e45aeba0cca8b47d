package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/mailer"
	"email-dispatch-go/internal/models"
	"email-dispatch-go/internal/monitor"
	"email-dispatch-go/internal/queue"
)

// Dispatcher is the engine operation exposed to the HTTP ingress.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.EmailRequest) (models.EmailRecord, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	dispatcher  Dispatcher
	store       *history.Store
	mailer      *mailer.Mailer
	bridge      *queue.Bridge
	monitor     *monitor.Monitor
	serviceName string
}

// NewHandlers creates new HTTP handlers
func NewHandlers(d Dispatcher, store *history.Store, m *mailer.Mailer, b *queue.Bridge, mon *monitor.Monitor, serviceName string) *Handlers {
	return &Handlers{
		dispatcher:  d,
		store:       store,
		mailer:      m,
		bridge:      b,
		monitor:     mon,
		serviceName: serviceName,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		// Dispatch
		api.POST("/send", h.SendEmail)
		api.POST("/send/async", h.SendEmailAsync)

		// History
		api.GET("/logs", h.GetLogs)
		api.GET("/logs/:id", h.GetLog)
		api.GET("/stats", h.GetStats)
	}
}
