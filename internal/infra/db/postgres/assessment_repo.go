package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

type AssessmentRepository struct{ db *sql.DB }

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository { return &AssessmentRepository{db: db} }

var _ domain.Repository = (*AssessmentRepository)(nil)

func (r *AssessmentRepository) GetWithGapsAndRisks(ctx context.Context, id string) (*domain.Assessment, error) {
	const q = `
SELECT id, organization_id, user_id, template_id, status, responses,
       risk_score, credits_used, ai_risk_analysis, ai_strategy_matrix,
       ai_generated_at, completed_at
FROM assessments
WHERE id = $1;`

	var (
		a                        domain.Assessment
		responses, ra, sm        []byte
		score                    sql.NullFloat64
		generatedAt, completedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.OrganizationID, &a.UserID, &a.TemplateID, &a.Status, &responses,
		&score, &a.CreditsUsed, &ra, &sm,
		&generatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if score.Valid {
		a.RiskScore = &score.Float64
	}
	a.AIGeneratedAt = timePtr(generatedAt)
	a.CompletedAt = timePtr(completedAt)
	for _, f := range []struct {
		name string
		b    []byte
		out  any
	}{
		{"responses", responses, &a.Responses},
		{"ai_risk_analysis", ra, &a.AIRiskAnalysis},
		{"ai_strategy_matrix", sm, &a.AIStrategyMatrix},
	} {
		if len(f.b) == 0 {
			continue
		}
		if err := json.Unmarshal(f.b, f.out); err != nil {
			return nil, fmt.Errorf("assessment %s %s: %w", id, f.name, err)
		}
	}

	if a.Gaps, err = r.listGaps(ctx, `WHERE assessment_id = $1 ORDER BY position, id`, id); err != nil {
		return nil, err
	}
	if a.Risks, err = r.risks(ctx, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) listGaps(ctx context.Context, where string, args ...any) ([]domain.Gap, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, assessment_id, category, title, description, severity, priority,
       estimated_cost, estimated_effort
FROM gaps `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Gap
	for rows.Next() {
		var g domain.Gap
		if err := rows.Scan(
			&g.ID, &g.AssessmentID, &g.Category, &g.Title, &g.Description, &g.Severity, &g.Priority,
			&g.EstimatedCost, &g.EstimatedEffort,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *AssessmentRepository) risks(ctx context.Context, assessmentID string) ([]domain.Risk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, assessment_id, category, title, description, likelihood, impact,
       risk_level, mitigation_strategy
FROM risks WHERE assessment_id = $1 ORDER BY position, id`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Risk
	for rows.Next() {
		var k domain.Risk
		if err := rows.Scan(
			&k.ID, &k.AssessmentID, &k.Category, &k.Title, &k.Description, &k.Likelihood, &k.Impact,
			&k.RiskLevel, &k.MitigationStrategy,
		); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// SaveAnalysis is a compare-and-set on ai_generated_at using IS NOT DISTINCT FROM, which
// treats two NULLs as equal.
func (r *AssessmentRepository) SaveAnalysis(ctx context.Context, id string, expected *time.Time, st domain.StoredAnalysis) (bool, error) {
	const q = `
UPDATE assessments
SET risk_score = $1, ai_risk_analysis = $2, ai_strategy_matrix = $3, ai_generated_at = $4
WHERE id = $5 AND ai_generated_at IS NOT DISTINCT FROM $6::timestamptz;`

	ra, err := json.Marshal(st.RiskAnalysis)
	if err != nil {
		return false, err
	}
	sm, err := json.Marshal(st.StrategyMatrix)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, q, st.RiskScore, string(ra), string(sm), st.GeneratedAt.UTC(), id, timeArg(expected))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *AssessmentRepository) GetGap(ctx context.Context, id string) (*domain.Gap, error) {
	gaps, err := r.listGaps(ctx, `WHERE id = $1`, id)
	if err != nil || len(gaps) == 0 {
		return nil, err
	}
	return &gaps[0], nil
}

func (r *AssessmentRepository) Complete(ctx context.Context, c domain.Completion) (done bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if !done || err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE assessments SET status = $1, completed_at = $2, credits_used = $3
WHERE id = $4 AND status <> $1;`, domain.StatusCompleted, c.CompletedAt.UTC(), c.CreditsUsed, c.AssessmentID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}

	for i, g := range c.Gaps {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO gaps (id, assessment_id, category, title, description, severity, priority,
                  estimated_cost, estimated_effort, position)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`,
			g.ID, c.AssessmentID, g.Category, g.Title, g.Description, g.Severity, g.Priority,
			g.EstimatedCost, g.EstimatedEffort, i); err != nil {
			return false, err
		}
	}
	for i, k := range c.Risks {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO risks (id, assessment_id, category, title, description, likelihood, impact,
                   risk_level, mitigation_strategy, position)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`,
			k.ID, c.AssessmentID, k.Category, k.Title, k.Description, k.Likelihood, k.Impact,
			k.RiskLevel, k.MitigationStrategy, i); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
