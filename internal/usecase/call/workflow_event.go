package call

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/call"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// Actions n8n can report back about a call.
const (
	ActionUpdateCallType = "update_call_type"
	ActionEndCall        = "end_call"
)

type WorkflowEventInput struct {
	CallID     uint
	Action     string
	Type       string
	Transcript string
	Recording  string
}

type ApplyWorkflowEvent struct {
	calls storage.CallStore
	now   func() time.Time
}

func NewApplyWorkflowEvent(calls storage.CallStore) *ApplyWorkflowEvent {
	return &ApplyWorkflowEvent{calls: calls, now: time.Now}
}

func (uc *ApplyWorkflowEvent) Execute(
	ctx context.Context,
	in WorkflowEventInput,
) (*models.Call, error) {

	c, err := uc.calls.GetCall(ctx, in.CallID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("call_not_found")
	}
	if err != nil {
		return nil, err
	}

	var patch storage.CallPatch

	switch in.Action {
	case ActionUpdateCallType:
		callType := strings.TrimSpace(in.Type)
		if callType == "" {
			return nil, httperr.ErrBusiness("missing_call_type")
		}
		patch.Type = &callType

	case ActionEndCall:
		end := uc.now().UTC()
		duration := domain.FormatDuration(end.Sub(c.StartTime))
		status := string(domain.StatusCompleted)
		patch = storage.CallPatch{
			EndTime:  &end,
			Duration: &duration,
			Status:   &status,
		}
		// Absent fields keep what is already stored.
		if in.Transcript != "" {
			patch.Transcript = &in.Transcript
		}
		if in.Recording != "" {
			patch.Recording = &in.Recording
		}

	default:
		return nil, httperr.ErrBusiness("invalid_action")
	}

	return uc.calls.UpdateCall(ctx, c.ID, patch)
}
