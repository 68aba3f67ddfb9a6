package call

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

type trigger struct {
	event string
	data  any
}

type fakeWorkflows struct {
	triggers []trigger
}

func (f *fakeWorkflows) add(event string, data any) error {
	f.triggers = append(f.triggers, trigger{event: event, data: data})
	return nil
}

func (f *fakeWorkflows) TriggerCallWorkflow(_ context.Context, data any) error {
	return f.add("call", data)
}

func (f *fakeWorkflows) TriggerSpeechWorkflow(_ context.Context, data any) error {
	return f.add("speech", data)
}

func (f *fakeWorkflows) TriggerBookingWorkflow(_ context.Context, data any) error {
	return f.add("booking", data)
}

func (f *fakeWorkflows) TriggerReportWorkflow(_ context.Context, data any) error {
	return f.add("report", data)
}

type fakeObjects struct {
	enabled bool
}

func (f fakeObjects) Enabled() bool { return f.enabled }

func (f fakeObjects) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func seedBusiness(t *testing.T, store *memory.Store, phone string) *models.Business {
	t.Helper()
	b := &models.Business{UserID: 1, BusinessName: "Cafe", Phone: phone}
	require.NoError(t, store.CreateBusiness(context.Background(), b))
	return b
}

func TestHandleInbound(t *testing.T) {
	store := memory.New()
	b := seedBusiness(t, store, "(512) 555-0100")
	wf := &fakeWorkflows{}
	uc := NewHandleInbound(store, wf, zap.NewNop())

	c, got, err := uc.Execute(context.Background(), InboundInput{From: "+15125550199", To: "+15125550100", CallSID: "CA1"})
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.ID, c.BusinessID)
	assert.Equal(t, "Unknown Caller", c.Caller)
	assert.Equal(t, "Unknown", c.Type)
	assert.Equal(t, "in-progress", c.Status)
	assert.Equal(t, "0:00", c.Duration)

	require.Len(t, wf.triggers, 1)
	assert.Equal(t, "call", wf.triggers[0].event)
	assert.Equal(t, "CA1", wf.triggers[0].data.(map[string]any)["callSid"])

	_, _, err = uc.Execute(context.Background(), InboundInput{From: "+1", To: "+19999999999"})
	assert.True(t, httperr.IsBusiness(err, "business_not_found"))
}

func TestForwardSpeech(t *testing.T) {
	store := memory.New()
	seedBusiness(t, store, "+15125550100")
	wf := &fakeWorkflows{}

	err := NewForwardSpeech(store, wf).Execute(context.Background(), SpeechInput{To: "+15125550100", CallSID: "CA1", Speech: "book a table"})
	require.NoError(t, err)
	require.Len(t, wf.triggers, 1)
	assert.Equal(t, "book a table", wf.triggers[0].data.(map[string]any)["speech"])
}

func TestApplyWorkflowEvent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &models.Call{BusinessID: 1, StartTime: start}
	require.NoError(t, store.CreateCall(ctx, c))

	uc := NewApplyWorkflowEvent(store)
	uc.now = func() time.Time { return start.Add(3*time.Minute + 7*time.Second) }

	updated, err := uc.Execute(ctx, WorkflowEventInput{CallID: c.ID, Action: ActionUpdateCallType, Type: "Reservation"})
	require.NoError(t, err)
	assert.Equal(t, "Reservation", updated.Type)

	updated, err = uc.Execute(ctx, WorkflowEventInput{
		CallID: c.ID, Action: ActionEndCall, Transcript: "hello", Recording: "calls/1.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "3:07", updated.Duration)
	assert.Equal(t, "hello", updated.Transcript)
	require.NotNil(t, updated.EndTime)

	_, err = uc.Execute(ctx, WorkflowEventInput{CallID: c.ID, Action: "explode"})
	assert.True(t, httperr.IsBusiness(err, "invalid_action"))

	_, err = uc.Execute(ctx, WorkflowEventInput{CallID: c.ID, Action: ActionUpdateCallType})
	assert.True(t, httperr.IsBusiness(err, "missing_call_type"))

	_, err = uc.Execute(ctx, WorkflowEventInput{CallID: 999, Action: ActionEndCall})
	assert.True(t, httperr.IsBusiness(err, "call_not_found"))
}

func TestDashboardStats(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateCall(ctx, &models.Call{BusinessID: 1}))
	}
	require.NoError(t, store.CreateCall(ctx, &models.Call{BusinessID: 2}))

	for _, d := range []time.Time{
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 30, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, store.CreateBooking(ctx, &models.Booking{BusinessID: 1, Customer: "Ann", Service: "Cut", Date: d}))
	}

	uc := NewGetDashboardStats(store, "UTC")
	uc.now = func() time.Time { return now }

	stats, err := uc.Execute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalCalls: 3, MonthlyBookings: 2, MonthlyRevenue: "$300"}, stats)

	wf := &fakeWorkflows{}
	_, err = NewRequestReport(uc, wf).Execute(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, wf.triggers, 1)
	assert.Equal(t, "report", wf.triggers[0].event)
}

func TestRecordingLink(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	stored := &models.Call{BusinessID: 1, Recording: "calls/1.mp3"}
	absolute := &models.Call{BusinessID: 1, Recording: "https://api.twilio.com/rec/RE1"}
	none := &models.Call{BusinessID: 1}
	for _, c := range []*models.Call{stored, absolute, none} {
		require.NoError(t, store.CreateCall(ctx, c))
	}

	uc := NewRecordingLink(store, fakeObjects{enabled: true}, 15*time.Minute)

	url, err := uc.Execute(ctx, 1, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/calls/1.mp3?ttl=15m0s", url)

	url, err = uc.Execute(ctx, 1, absolute.ID)
	require.NoError(t, err)
	assert.Equal(t, absolute.Recording, url)

	_, err = uc.Execute(ctx, 1, none.ID)
	assert.True(t, httperr.IsBusiness(err, "recording_not_found"))

	_, err = uc.Execute(ctx, 2, stored.ID)
	assert.True(t, httperr.IsBusiness(err, "call_not_found"))

	_, err = NewRecordingLink(store, fakeObjects{}, time.Minute).Execute(ctx, 1, stored.ID)
	assert.True(t, httperr.IsBusiness(err, "object_store_disabled"))
}

type downWorkflows struct{ fakeWorkflows }

func (*downWorkflows) TriggerCallWorkflow(context.Context, any) error {
	return errors.New("n8n unreachable")
}

func TestHandleInboundKeepsCallWhenWorkflowFails(t *testing.T) {
	store := memory.New()
	b := seedBusiness(t, store, "(512) 555-0100")
	ctx := context.Background()

	c, got, err := NewHandleInbound(store, &downWorkflows{}, zap.NewNop()).Execute(ctx, InboundInput{From: "+15125550199", To: "+15125550100"})
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	calls, err := store.ListCalls(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, c.ID, calls[0].ID)
}

func TestEndCallKeepsStoredTranscript(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := &models.Call{BusinessID: 1, Transcript: "earlier notes", Recording: "calls/9.mp3"}
	require.NoError(t, store.CreateCall(ctx, c))

	updated, err := NewApplyWorkflowEvent(store).Execute(ctx, WorkflowEventInput{CallID: c.ID, Action: ActionEndCall})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "earlier notes", updated.Transcript)
	assert.Equal(t, "calls/9.mp3", updated.Recording)
}
