package workflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Triggerer starts n8n workflows. Both Service and Async implement it.
type Triggerer interface {
	TriggerCallWorkflow(ctx context.Context, data any) error
	TriggerSpeechWorkflow(ctx context.Context, data any) error
	TriggerBookingWorkflow(ctx context.Context, data any) error
	TriggerReportWorkflow(ctx context.Context, data any) error
}

// Async fires triggers in the background so webhook and API responses do
// not wait on n8n. Failures are logged, never returned.
type Async struct {
	next    Triggerer
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Triggerer, log *zap.Logger) *Async {
	return &Async{next: next, log: log, timeout: 15 * time.Second}
}

func (a *Async) TriggerCallWorkflow(ctx context.Context, data any) error {
	a.run(ctx, EventCallStarted, data, a.next.TriggerCallWorkflow)
	return nil
}

func (a *Async) TriggerSpeechWorkflow(ctx context.Context, data any) error {
	a.run(ctx, EventCallSpeech, data, a.next.TriggerSpeechWorkflow)
	return nil
}

func (a *Async) TriggerBookingWorkflow(ctx context.Context, data any) error {
	a.run(ctx, EventBookingCreated, data, a.next.TriggerBookingWorkflow)
	return nil
}

func (a *Async) TriggerReportWorkflow(ctx context.Context, data any) error {
	a.run(ctx, EventReportRequested, data, a.next.TriggerReportWorkflow)
	return nil
}

func (a *Async) run(
	ctx context.Context,
	event string,
	data any,
	trigger func(context.Context, any) error,
) {
	// Detach from the request so the trigger outlives the response.
	base := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		tctx, cancel := context.WithTimeout(base, a.timeout)
		defer cancel()
		if err := trigger(tctx, data); err != nil {
			a.log.Warn("n8n workflow trigger failed", zap.String("event", event), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight triggers finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
