package subscription

import (
	"context"

	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
)

// Billing is the part of the Stripe wrapper the subscription flows use.
type Billing interface {
	CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error)
	CreateSubscriptionCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.Checkout, error)
	CreateBillingPortal(ctx context.Context, customerID, returnURL string) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionState, error)
}

// PriceLookup resolves the configured Stripe price for a plan and cycle.
type PriceLookup func(plan, cycle string) string
