package models

import "time"

// EmailStatus is the terminal outcome of a dispatch attempt.
type EmailStatus string

const (
	StatusSent   EmailStatus = "sent"
	StatusFailed EmailStatus = "failed"
)

// EmailRequest represents an inbound request to send a single email.
// It arrives either as an HTTP request body or as a Kafka message payload.
type EmailRequest struct {
	ToEmail          string         `json:"to_email" binding:"required,email"`
	ToName           string         `json:"to_name"`
	Subject          string         `json:"subject" binding:"required"`
	Body             string         `json:"body" binding:"required"`
	TemplateData     map[string]any `json:"template_data"`
	EventType        string         `json:"event_type"`
	RelatedUserID    string         `json:"related_user_id"`
	RelatedProjectID string         `json:"related_project_id"`
}

// EmailRecord is the immutable log entry produced by one dispatch attempt.
// Exactly one of the success fields (SentAt, MessageID) or the failure
// field (ErrorMessage) is populated, matching Status.
type EmailRecord struct {
	ID               string      `json:"id"`
	ToEmail          string      `json:"to_email"`
	ToName           string      `json:"to_name,omitempty"`
	Subject          string      `json:"subject"`
	Status           EmailStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	SentAt           *time.Time  `json:"sent_at,omitempty"`
	MessageID        string      `json:"message_id,omitempty"`
	EventType        string      `json:"event_type,omitempty"`
	RelatedUserID    string      `json:"related_user_id,omitempty"`
	RelatedProjectID string      `json:"related_project_id,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
}

// Stats holds the running dispatch counters.
type Stats struct {
	TotalSent    int64 `json:"total_sent"`
	TotalFailed  int64 `json:"total_failed"`
	TotalPending int64 `json:"total_pending"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string            `json:"status"`
	Service        string            `json:"service"`
	Timestamp      time.Time         `json:"timestamp"`
	SMTPConfigured bool              `json:"smtp_configured"`
	KafkaEnabled   bool              `json:"kafka_enabled"`
	Metrics        map[string]string `json:"metrics"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
