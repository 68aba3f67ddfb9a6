package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

func TestDispatcherWritesAndDrains(t *testing.T) {
	store := memory.New()
	d := NewDispatcher(New(store), zap.NewNop())

	for i := 0; i < 10; i++ {
		d.Dispatch(Event{
			BusinessID: 4,
			UserID:     Ptr(2),
			Action:     ActionBookingCreated,
			Entity:     "booking",
			EntityID:   Ptr(uint(i + 1)),
			Metadata:   map[string]any{"n": i},
		})
	}
	d.Close()

	logs, total, err := store.ListAuditLogs(context.Background(), storage.AuditFilter{BusinessID: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
	assert.Len(t, logs, 10)
	assert.Equal(t, "booking", logs[0].Entity)
	assert.Contains(t, logs[0].Metadata, `"n":`)
}

func TestDispatchAfterCloseIsIgnored(t *testing.T) {
	store := memory.New()
	d := NewDispatcher(New(store), zap.NewNop())
	d.Close()
	d.Close()

	assert.NotPanics(t, func() {
		d.Dispatch(Event{BusinessID: 1, Action: ActionFAQsReplaced})
	})

	_, total, err := store.ListAuditLogs(context.Background(), storage.AuditFilter{BusinessID: 1})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEncodeMetadata(t *testing.T) {
	assert.Empty(t, encodeMetadata(nil))
	assert.Equal(t, "plain", encodeMetadata("plain"))
	assert.Equal(t, `{"plan":"basic"}`, encodeMetadata(map[string]string{"plan": "basic"}))
	assert.Empty(t, encodeMetadata(func() {}))
	assert.Empty(t, encodeMetadata(string(make([]byte, maxMetadata+1))))
}
