package subscription

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// Outcome of a processed webhook event, used for logging and metrics.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// ApplyWebhook mirrors Stripe subscription state onto the local row.
type ApplyWebhook struct {
	store storage.SubscriptionStore
}

func NewApplyWebhook(store storage.SubscriptionStore) *ApplyWebhook {
	return &ApplyWebhook{store: store}
}

func (uc *ApplyWebhook) Execute(ctx context.Context, ev *billing.WebhookEvent) (string, error) {
	switch {
	case ev.Checkout != nil:
		return uc.checkoutCompleted(ctx, ev.Checkout)
	case ev.Subscription != nil:
		return uc.subscriptionChanged(ctx, ev.Type, ev.Subscription)
	}
	return OutcomeIgnored, nil
}

func (uc *ApplyWebhook) checkoutCompleted(ctx context.Context, c *billing.CheckoutCompleted) (string, error) {
	sub, err := uc.locate(ctx, "", c.CustomerID, c.UserID)
	if err != nil || sub == nil {
		return OutcomeIgnored, err
	}

	patch := storage.SubscriptionPatch{
		Status:            ptr(domain.StatusActive),
		CancelAtPeriodEnd: ptr(false),
	}
	if c.CustomerID != "" {
		patch.StripeCustomerID = &c.CustomerID
	}
	if c.SubscriptionID != "" {
		patch.StripeSubscriptionID = &c.SubscriptionID
	}
	if domain.IsPaidPlan(c.Plan) {
		patch.Plan = &c.Plan
	}

	if _, err := uc.store.UpdateSubscription(ctx, sub.ID, patch); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

func (uc *ApplyWebhook) subscriptionChanged(ctx context.Context, eventType string, s *billing.SubscriptionState) (string, error) {
	sub, err := uc.locate(ctx, s.ID, s.CustomerID, s.UserID)
	if err != nil || sub == nil {
		return OutcomeIgnored, err
	}

	status := s.Status
	if eventType == billing.EventSubscriptionDeleted {
		status = domain.StatusCanceled
	}

	patch := storage.SubscriptionPatch{
		Status:             &status,
		CancelAtPeriodEnd:  &s.CancelAtPeriodEnd,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
	}
	if s.ID != "" {
		patch.StripeSubscriptionID = &s.ID
	}
	if s.CustomerID != "" {
		patch.StripeCustomerID = &s.CustomerID
	}
	if domain.IsPaidPlan(s.Plan) {
		patch.Plan = &s.Plan
	}

	if _, err := uc.store.UpdateSubscription(ctx, sub.ID, patch); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

// locate finds the local row by Stripe subscription, then customer, then
// the user ID carried in metadata. A nil result means the event is not ours.
func (uc *ApplyWebhook) locate(
	ctx context.Context,
	subscriptionID string,
	customerID string,
	userID uint,
) (*models.Subscription, error) {

	lookups := []func() (*models.Subscription, error){}
	if subscriptionID != "" {
		lookups = append(lookups, func() (*models.Subscription, error) {
			return uc.store.GetSubscriptionByStripeID(ctx, subscriptionID)
		})
	}
	if customerID != "" {
		lookups = append(lookups, func() (*models.Subscription, error) {
			return uc.store.GetSubscriptionByCustomerID(ctx, customerID)
		})
	}
	if userID != 0 {
		lookups = append(lookups, func() (*models.Subscription, error) {
			return uc.store.GetSubscriptionByUserID(ctx, userID)
		})
	}

	for _, lookup := range lookups {
		sub, err := lookup()
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
