package subscription

import "time"

// ===============================
// Plans
// ===============================

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

func IsValidPlan(s string) bool {
	switch Plan(s) {
	case PlanFree, PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

// IsPaidPlan reports whether the plan is sold through checkout.
func IsPaidPlan(s string) bool {
	switch Plan(s) {
	case PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

type BillingCycle string

const (
	CycleMonthly  BillingCycle = "monthly"
	CycleAnnually BillingCycle = "annually"
)

// ===============================
// Status
// ===============================

// Status values mirror Stripe's subscription statuses.
const (
	StatusActive     = "active"
	StatusTrialing   = "trialing"
	StatusPastDue    = "past_due"
	StatusIncomplete = "incomplete"
	StatusUnpaid     = "unpaid"
	StatusCanceled   = "canceled"
)

// FreeTrialLength is the first period granted at registration.
const FreeTrialLength = 30 * 24 * time.Hour

// FreePeriod returns the period bounds of a fresh free subscription.
func FreePeriod(now time.Time) (time.Time, time.Time) {
	return now, now.Add(FreeTrialLength)
}

func IsCanceled(status string) bool {
	return status == StatusCanceled
}
