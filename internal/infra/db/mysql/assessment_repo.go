package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

var _ domain.Repository = (*AssessmentRepository)(nil)

const selectAssessment = `
SELECT id, organization_id, user_id, template_id, status, responses,
       risk_score, credits_used, ai_risk_analysis, ai_strategy_matrix,
       ai_generated_at, completed_at
FROM assessments
WHERE id=? LIMIT 1;
`

const selectGaps = `
SELECT id, assessment_id, category, title, description, severity, priority,
       estimated_cost, estimated_effort
FROM gaps
WHERE assessment_id=? ORDER BY position, id;
`

const selectRisks = `
SELECT id, assessment_id, category, title, description, likelihood, impact,
       risk_level, mitigation_strategy
FROM risks
WHERE assessment_id=? ORDER BY position, id;
`

// GetWithGapsAndRisks loads the assessment row and its child records.
func (r *AssessmentRepository) GetWithGapsAndRisks(ctx context.Context, id string) (*domain.Assessment, error) {
	var (
		a                        domain.Assessment
		responses, ra, sm        []byte
		score                    sql.NullFloat64
		generatedAt, completedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, selectAssessment, id).Scan(
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
	if err := unmarshalOptional(responses, &a.Responses); err != nil {
		return nil, fmt.Errorf("assessment %s responses: %w", id, err)
	}
	if err := unmarshalOptional(ra, &a.AIRiskAnalysis); err != nil {
		return nil, fmt.Errorf("assessment %s ai_risk_analysis: %w", id, err)
	}
	if err := unmarshalOptional(sm, &a.AIStrategyMatrix); err != nil {
		return nil, fmt.Errorf("assessment %s ai_strategy_matrix: %w", id, err)
	}

	if a.Gaps, err = r.gaps(ctx, id); err != nil {
		return nil, err
	}
	if a.Risks, err = r.risks(ctx, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) gaps(ctx context.Context, assessmentID string) ([]domain.Gap, error) {
	rows, err := r.db.QueryContext(ctx, selectGaps, assessmentID)
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
	rows, err := r.db.QueryContext(ctx, selectRisks, assessmentID)
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

// SaveAnalysis is a compare-and-set on ai_generated_at. <=> is MySQL's null-safe equality,
// so a nil expectation matches a never-generated row. JSON goes over as text: the server
// rejects binary-charset values for JSON columns.
func (r *AssessmentRepository) SaveAnalysis(ctx context.Context, id string, expected *time.Time, st domain.StoredAnalysis) (bool, error) {
	const q = `
UPDATE assessments
SET risk_score=?, ai_risk_analysis=?, ai_strategy_matrix=?, ai_generated_at=?
WHERE id=? AND ai_generated_at <=> ?;
`
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
	const q = `
SELECT id, assessment_id, category, title, description, severity, priority,
       estimated_cost, estimated_effort
FROM gaps WHERE id=? LIMIT 1;
`
	var g domain.Gap
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&g.ID, &g.AssessmentID, &g.Category, &g.Title, &g.Description, &g.Severity, &g.Priority,
		&g.EstimatedCost, &g.EstimatedEffort,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Complete flips the status and inserts gaps and risks in one transaction.
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
UPDATE assessments SET status=?, completed_at=?, credits_used=?
WHERE id=? AND status<>?;
`, domain.StatusCompleted, c.CompletedAt.UTC(), c.CreditsUsed, c.AssessmentID, domain.StatusCompleted)
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
VALUES (?,?,?,?,?,?,?,?,?,?);
`, g.ID, c.AssessmentID, g.Category, g.Title, g.Description, g.Severity, g.Priority,
			g.EstimatedCost, g.EstimatedEffort, i); err != nil {
			return false, err
		}
	}
	for i, k := range c.Risks {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO risks (id, assessment_id, category, title, description, likelihood, impact,
                   risk_level, mitigation_strategy, position)
VALUES (?,?,?,?,?,?,?,?,?,?);
`, k.ID, c.AssessmentID, k.Category, k.Title, k.Description, k.Likelihood, k.Impact,
			k.RiskLevel, k.MitigationStrategy, i); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func unmarshalOptional(b []byte, out any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}
