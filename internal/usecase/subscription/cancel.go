package subscription

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// Cancel ends the subscription immediately. Canceling an already canceled
// subscription returns it unchanged without calling Stripe.
type Cancel struct {
	store   storage.SubscriptionStore
	billing Billing
	audit   audit.Recorder
}

func NewCancel(
	store storage.SubscriptionStore,
	billing Billing,
	audit audit.Recorder,
) *Cancel {
	return &Cancel{
		store:   store,
		billing: billing,
		audit:   audit,
	}
}

func (uc *Cancel) Execute(
	ctx context.Context,
	userID uint,
	businessID uint,
) (*models.Subscription, error) {

	sub, err := uc.store.GetSubscriptionByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("subscription_not_found")
	}
	if err != nil {
		return nil, err
	}

	if domain.IsCanceled(sub.Status) {
		return sub, nil
	}

	patch := storage.SubscriptionPatch{
		Status:            ptr(domain.StatusCanceled),
		CancelAtPeriodEnd: ptr(false),
	}

	if sub.StripeSubscriptionID != "" {
		state, err := uc.billing.CancelSubscription(ctx, sub.StripeSubscriptionID)
		if err != nil {
			return nil, err
		}
		if state.CurrentPeriodEnd != nil {
			patch.CurrentPeriodEnd = state.CurrentPeriodEnd
		}
	}

	updated, err := uc.store.UpdateSubscription(ctx, sub.ID, patch)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionSubscriptionCanceled,
		Entity:     "subscription",
		EntityID:   &updated.ID,
		Metadata:   map[string]string{"plan": updated.Plan},
	})

	return updated, nil
}

func ptr[T any](v T) *T {
	return &v
}
