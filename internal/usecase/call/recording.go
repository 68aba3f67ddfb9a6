package call

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type ObjectStore interface {
	Enabled() bool
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// RecordingLink resolves a call's recording to a URL the dashboard can
// play: absolute URLs are returned as stored, object keys are presigned.
type RecordingLink struct {
	calls   storage.CallStore
	objects ObjectStore
	ttl     time.Duration
}

func NewRecordingLink(
	calls storage.CallStore,
	objects ObjectStore,
	ttl time.Duration,
) *RecordingLink {
	return &RecordingLink{
		calls:   calls,
		objects: objects,
		ttl:     ttl,
	}
}

func (uc *RecordingLink) Execute(
	ctx context.Context,
	businessID uint,
	callID uint,
) (string, error) {

	c, err := OwnedCall(ctx, uc.calls, businessID, callID)
	if err != nil {
		return "", err
	}

	ref := strings.TrimSpace(c.Recording)
	if ref == "" {
		return "", httperr.ErrBusiness("recording_not_found")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	if !uc.objects.Enabled() {
		return "", httperr.ErrBusiness("object_store_disabled")
	}
	return uc.objects.PresignGet(ctx, ref, uc.ttl)
}

// OwnedCall loads a call and hides calls of other businesses behind the
// same not-found error as missing ones.
func OwnedCall(
	ctx context.Context,
	calls storage.CallStore,
	businessID uint,
	callID uint,
) (*models.Call, error) {

	c, err := calls.GetCall(ctx, callID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("call_not_found")
	}
	if err != nil {
		return nil, err
	}
	if c.BusinessID != businessID {
		return nil, httperr.ErrBusiness("call_not_found")
	}
	return c, nil
}
