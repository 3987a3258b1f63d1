package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bryanwahyu/complyhub/internal/domain/billing"
)

type BillingRepository struct {
	db *sql.DB
}

func NewBillingRepository(db *sql.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

var (
	_ billing.SubscriptionLookup = (*BillingRepository)(nil)
	_ billing.Credits            = (*BillingRepository)(nil)
)

// CurrentPlan falls back to FREE when there is no subscription row.
func (r *BillingRepository) CurrentPlan(ctx context.Context, orgID string) (billing.Plan, error) {
	var p billing.Plan
	err := r.db.QueryRowContext(ctx, `SELECT plan FROM subscriptions WHERE organization_id=? LIMIT 1;`, orgID).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.PlanFree, nil
	}
	if err != nil {
		return "", err
	}
	if !p.Valid() {
		return billing.PlanFree, nil
	}
	return p, nil
}

func (r *BillingRepository) Balance(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM credit_balances WHERE organization_id=? LIMIT 1;`, orgID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Consume is a single conditional decrement.
func (r *BillingRepository) Consume(ctx context.Context, orgID string, amount int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE credit_balances SET balance = balance - ?
WHERE organization_id=? AND balance >= ?;
`, amount, orgID, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *BillingRepository) Refund(ctx context.Context, orgID string, amount int) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO credit_balances (organization_id, balance) VALUES (?, ?)
ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance);
`, orgID, amount)
	return err
}
