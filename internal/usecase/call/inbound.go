package call

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/call"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

const (
	unknownCaller = "Unknown Caller"
	unknownType   = "Unknown"
)

// ======================================================
// INBOUND CALL
// ======================================================

type InboundInput struct {
	From    string
	To      string
	CallSID string
}

// HandleInbound logs a ringing call against the business that owns the
// dialled number and hands it to the call workflow.
type HandleInbound struct {
	store     storage.Storage
	workflows workflow.Triggerer
	log       *zap.Logger
	now       func() time.Time
}

func NewHandleInbound(
	store storage.Storage,
	workflows workflow.Triggerer,
	log *zap.Logger,
) *HandleInbound {
	return &HandleInbound{
		store:     store,
		workflows: workflows,
		log:       log,
		now:       time.Now,
	}
}

func (uc *HandleInbound) Execute(
	ctx context.Context,
	in InboundInput,
) (*models.Call, *models.Business, error) {

	b, err := businessForNumber(ctx, uc.store, in.To)
	if err != nil {
		return nil, nil, err
	}

	c := &models.Call{
		BusinessID: b.ID,
		Caller:     unknownCaller,
		Phone:      in.From,
		Type:       unknownType,
		StartTime:  uc.now().UTC(),
		Status:     string(domain.StatusInProgress),
	}
	if err := uc.store.CreateCall(ctx, c); err != nil {
		return nil, nil, err
	}

	if err := uc.workflows.TriggerCallWorkflow(ctx, map[string]any{
		"callId":     c.ID,
		"businessId": b.ID,
		"callSid":    in.CallSID,
		"phone":      in.From,
	}); err != nil {
		// The call is logged; the caller still hears the greeting.
		uc.log.Warn("call workflow trigger failed",
			zap.Uint("call_id", c.ID),
			zap.Error(err),
		)
	}

	return c, b, nil
}

// ======================================================
// CAPTURED SPEECH
// ======================================================

type SpeechInput struct {
	To      string
	CallSID string
	Speech  string
}

// ForwardSpeech passes what the caller said to the call workflow.
type ForwardSpeech struct {
	store     storage.BusinessStore
	workflows workflow.Triggerer
}

func NewForwardSpeech(
	store storage.BusinessStore,
	workflows workflow.Triggerer,
) *ForwardSpeech {
	return &ForwardSpeech{
		store:     store,
		workflows: workflows,
	}
}

func (uc *ForwardSpeech) Execute(ctx context.Context, in SpeechInput) error {
	b, err := businessForNumber(ctx, uc.store, in.To)
	if err != nil {
		return err
	}

	return uc.workflows.TriggerSpeechWorkflow(ctx, map[string]any{
		"businessId": b.ID,
		"callSid":    in.CallSID,
		"speech":     in.Speech,
	})
}

func businessForNumber(ctx context.Context, store storage.BusinessStore, to string) (*models.Business, error) {
	b, err := store.GetBusinessByPhone(ctx, to)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("business_not_found")
	}
	return b, err
}
