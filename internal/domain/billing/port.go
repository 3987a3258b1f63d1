package billing

import "context"

// SubscriptionLookup reads an organization's current plan.
type SubscriptionLookup interface {
	// CurrentPlan returns PlanFree when the organization has no subscription.
	CurrentPlan(ctx context.Context, organizationID string) (Plan, error)
}

// Credits is the balance an organization spends on assessments.
type Credits interface {
	Balance(ctx context.Context, organizationID string) (int, error)
	// Consume decrements by amount only if the balance covers it, reporting false otherwise.
	Consume(ctx context.Context, organizationID string, amount int) (bool, error)
	Refund(ctx context.Context, organizationID string, amount int) error
}
