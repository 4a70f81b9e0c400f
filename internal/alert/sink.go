package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Alert kinds understood by downstream sinks
const (
	KindDataIntegrity = "data_integrity"
	KindSyncFailure   = "sync_failure"
)

// Sink delivers alerts to an external notification channel. Callers
// treat delivery as fire-and-forget: a sink error is logged by the
// caller, never propagated.
type Sink interface {
	Send(ctx context.Context, kind, title, message string, details map[string]interface{}) error
}

// WebhookSink posts alerts as JSON to a configured webhook URL
type WebhookSink struct {
	client     *http.Client
	webhookURL string
}

// NewWebhookSink creates a new webhook sink
func NewWebhookSink(webhookURL string) *WebhookSink {
	return &WebhookSink{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

type webhookPayload struct {
	Kind      string                 `json:"kind"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Send posts the alert to the webhook
func (s *WebhookSink) Send(ctx context.Context, kind, title, message string, details map[string]interface{}) error {
	payload, err := json.Marshal(webhookPayload{
		Kind:      kind,
		Title:     title,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSink writes alerts to the application log. Used when no webhook is
// configured.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a new log-backed sink
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the alert
func (s *LogSink) Send(_ context.Context, kind, title, message string, details map[string]interface{}) error {
	s.logger.WithFields(logrus.Fields{
		"kind":    kind,
		"title":   title,
		"details": details,
	}).Warn(message)
	return nil
}
