// Package workflow posts automation events to an n8n webhook.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	EventCallStarted     = "call.started"
	EventCallSpeech      = "call.speech"
	EventBookingCreated  = "booking.created"
	EventReportRequested = "report.requested"
)

// SecretHeader carries the shared secret in both directions.
const SecretHeader = "X-Webhook-Secret"

type Event struct {
	Event  string    `json:"event"`
	Data   any       `json:"data"`
	SentAt time.Time `json:"sentAt"`
}

type Service struct {
	webhookURL string
	secret     string
	http       *http.Client
	log        *zap.Logger
	now        func() time.Time
}

func New(webhookURL, secret string, client *http.Client, log *zap.Logger) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{
		webhookURL: webhookURL,
		secret:     secret,
		http:       client,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) Enabled() bool { return s.webhookURL != "" }

// Secret is the value inbound n8n callbacks must present. Empty disables
// the check.
func (s *Service) Secret() string { return s.secret }

func (s *Service) TriggerCallWorkflow(ctx context.Context, data any) error {
	return s.trigger(ctx, EventCallStarted, data)
}

func (s *Service) TriggerSpeechWorkflow(ctx context.Context, data any) error {
	return s.trigger(ctx, EventCallSpeech, data)
}

func (s *Service) TriggerBookingWorkflow(ctx context.Context, data any) error {
	return s.trigger(ctx, EventBookingCreated, data)
}

func (s *Service) TriggerReportWorkflow(ctx context.Context, data any) error {
	return s.trigger(ctx, EventReportRequested, data)
}

func (s *Service) trigger(ctx context.Context, event string, data any) error {
	if !s.Enabled() {
		s.log.Info("[mock] n8n workflow", zap.String("event", event), zap.Any("data", data))
		return nil
	}

	body, err := json.Marshal(Event{Event: event, Data: data, SentAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("n8n %s: encode: %w", event, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set(SecretHeader, s.secret)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("n8n %s: %w", event, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("n8n %s: status %d", event, resp.StatusCode)
	}
	return nil
}
