package memory

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/billing"
)

type BillingRepository struct {
	s *Store
}

func NewBillingRepository(s *Store) *BillingRepository {
	return &BillingRepository{s: s}
}

var (
	_ billing.SubscriptionLookup = (*BillingRepository)(nil)
	_ billing.Credits            = (*BillingRepository)(nil)
)

func (r *BillingRepository) CurrentPlan(ctx context.Context, orgID string) (billing.Plan, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.plans[orgID]; ok {
		return p, nil
	}
	return billing.PlanFree, nil
}

func (r *BillingRepository) Balance(ctx context.Context, orgID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.credits[orgID], nil
}

func (r *BillingRepository) Consume(ctx context.Context, orgID string, amount int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.credits[orgID] < amount {
		return false, nil
	}
	r.s.credits[orgID] -= amount
	return true, nil
}

func (r *BillingRepository) Refund(ctx context.Context, orgID string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	r.s.credits[orgID] += amount
	r.s.mu.Unlock()
	return nil
}
