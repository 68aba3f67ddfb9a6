package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTriggerPostsEvent(t *testing.T) {
	var got map[string]any
	var secret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get(SecretHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.URL, "s3cret", srv.Client(), zap.NewNop())
	err := s.TriggerBookingWorkflow(context.Background(), map[string]any{"bookingId": 7})
	require.NoError(t, err)

	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, EventBookingCreated, got["event"])
	assert.Equal(t, float64(7), got["data"].(map[string]any)["bookingId"])
	assert.NotEmpty(t, got["sentAt"])
}

func TestTriggerReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(srv.URL, "", srv.Client(), zap.NewNop())
	err := s.TriggerCallWorkflow(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestMockMode(t *testing.T) {
	s := New("", "", nil, zap.NewNop())
	assert.False(t, s.Enabled())
	assert.NoError(t, s.TriggerReportWorkflow(context.Background(), map[string]any{"businessId": 1}))
}

type recordingTriggerer struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTriggerer) add(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingTriggerer) TriggerCallWorkflow(context.Context, any) error {
	return r.add(EventCallStarted)
}

func (r *recordingTriggerer) TriggerSpeechWorkflow(context.Context, any) error {
	return r.add(EventCallSpeech)
}

func (r *recordingTriggerer) TriggerBookingWorkflow(context.Context, any) error {
	return r.add(EventBookingCreated)
}

func (r *recordingTriggerer) TriggerReportWorkflow(context.Context, any) error {
	return errors.New("n8n down")
}

func TestAsyncRunsDetachedFromRequest(t *testing.T) {
	next := &recordingTriggerer{}
	a := NewAsync(next, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.TriggerCallWorkflow(ctx, nil))
	require.NoError(t, a.TriggerBookingWorkflow(ctx, nil))
	cancel()
	require.NoError(t, a.TriggerReportWorkflow(ctx, nil))

	a.Wait()
	assert.ElementsMatch(t, []string{EventCallStarted, EventBookingCreated}, next.events)
}

var _ Triggerer = (*Service)(nil)
