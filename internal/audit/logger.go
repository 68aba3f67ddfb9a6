package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// maxMetadata caps the stored metadata document.
const maxMetadata = 4096

// Logger writes events to the audit store synchronously.
type Logger struct {
	store storage.AuditStore
}

func New(store storage.AuditStore) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Record(ctx context.Context, ev Event) error {
	return l.store.CreateAuditLog(ctx, &models.AuditLog{
		BusinessID: ev.BusinessID,
		UserID:     ev.UserID,
		Action:     ev.Action,
		Entity:     ev.Entity,
		EntityID:   ev.EntityID,
		Metadata:   encodeMetadata(ev.Metadata),
	})
}

// encodeMetadata stores strings as given and everything else as JSON.
// Oversized or unencodable metadata is dropped rather than failing the write.
func encodeMetadata(v any) string {
	var out string
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		out = m
	case json.RawMessage:
		out = string(m)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		out = string(b)
	}
	if out == "null" || len(out) > maxMetadata {
		return ""
	}
	return out
}
