package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/mailer"
	"email-dispatch-go/internal/metrics"
	"email-dispatch-go/internal/models"
	"email-dispatch-go/internal/template"
)

// ErrInvalidRequest marks a request that violates the dispatch contract
// (missing required fields). Such requests are rejected before any
// transport attempt and produce no history record.
var ErrInvalidRequest = errors.New("invalid email request")

// Submitter is the outbound transport capability the engine depends on.
type Submitter interface {
	Submit(ctx context.Context, msg *mailer.Message) (*mailer.Receipt, error)
}

// Engine turns one email request into one terminal outcome plus a
// history record. It is safe for concurrent use; invocations share no
// state beyond the history store's atomic append.
type Engine struct {
	transport Submitter
	store     *history.Store
	metrics   *metrics.Metrics
}

// NewEngine creates a dispatch engine
func NewEngine(transport Submitter, store *history.Store, m *metrics.Metrics) *Engine {
	return &Engine{
		transport: transport,
		store:     store,
		metrics:   m,
	}
}

// Dispatch renders, submits and records a single email request. On a
// transport failure the fully populated failed record is returned
// together with the error, so a synchronous caller can still surface
// the reason while the attempt is already logged. Exactly one transport
// attempt is made per call.
func (e *Engine) Dispatch(ctx context.Context, req models.EmailRequest) (models.EmailRecord, error) {
	if err := validate(req); err != nil {
		return models.EmailRecord{}, err
	}

	id := uuid.New().String()
	createdAt := time.Now().UTC()
	start := time.Now()

	e.store.Begin()
	e.metrics.InFlight.Inc()
	defer e.metrics.InFlight.Dec()

	body := req.Body
	if len(req.TemplateData) > 0 {
		body = template.Render(req.Body, req.TemplateData)
	}

	msg := &mailer.Message{
		ToEmail:  req.ToEmail,
		ToName:   req.ToName,
		Subject:  req.Subject,
		HTMLBody: template.HTMLBody(body),
		TextBody: body,
	}

	rec := models.EmailRecord{
		ID:               id,
		ToEmail:          req.ToEmail,
		ToName:           req.ToName,
		Subject:          req.Subject,
		CreatedAt:        createdAt,
		EventType:        req.EventType,
		RelatedUserID:    req.RelatedUserID,
		RelatedProjectID: req.RelatedProjectID,
	}

	logrus.Infof("Dispatching email %s to %s", id, req.ToEmail)
	receipt, err := e.transport.Submit(ctx, msg)
	e.metrics.DispatchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		rec.Status = models.StatusFailed
		rec.ErrorMessage = err.Error()
		e.record(rec)
		e.metrics.DispatchFailures.Inc()
		logrus.Errorf("Email %s to %s failed: %v", id, req.ToEmail, err)
		return rec, fmt.Errorf("dispatch failed: %w", err)
	}

	sentAt := time.Now().UTC()
	rec.Status = models.StatusSent
	rec.SentAt = &sentAt
	rec.MessageID = receipt.MessageID
	e.record(rec)
	e.metrics.DispatchSuccesses.Inc()
	logrus.Infof("Email %s sent, message id %s", id, receipt.MessageID)
	return rec, nil
}

func (e *Engine) record(rec models.EmailRecord) {
	e.store.Record(rec)
	e.metrics.HistorySize.Set(float64(e.store.Size()))
}

func validate(req models.EmailRequest) error {
	if strings.TrimSpace(req.ToEmail) == "" {
		return fmt.Errorf("%w: to_email is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if req.Body == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidRequest)
	}
	return nil
}
