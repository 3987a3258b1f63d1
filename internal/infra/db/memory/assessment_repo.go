package memory

import (
	"context"
	"time"

	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

type AssessmentRepository struct {
	s *Store
}

func NewAssessmentRepository(s *Store) *AssessmentRepository {
	return &AssessmentRepository{s: s}
}

var _ domain.Repository = (*AssessmentRepository)(nil)

func (r *AssessmentRepository) GetWithGapsAndRisks(ctx context.Context, id string) (*domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assessments[id]
	if !ok {
		return nil, nil
	}
	var out domain.Assessment
	clone(a, &out)
	return &out, nil
}

// SaveAnalysis compares and swaps ai_generated_at under the store lock.
func (r *AssessmentRepository) SaveAnalysis(ctx context.Context, id string, expected *time.Time, st domain.StoredAnalysis) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assessments[id]
	if !ok {
		return false, nil
	}
	if !sameInstant(a.AIGeneratedAt, expected) {
		return false, nil
	}
	var cp domain.StoredAnalysis
	clone(st, &cp)
	score := cp.RiskScore
	at := cp.GeneratedAt
	a.RiskScore = &score
	a.AIRiskAnalysis = cp.RiskAnalysis
	a.AIStrategyMatrix = cp.StrategyMatrix
	a.AIGeneratedAt = &at
	return true, nil
}

func (r *AssessmentRepository) GetGap(ctx context.Context, id string) (*domain.Gap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.assessments {
		for _, g := range a.Gaps {
			if g.ID == id {
				out := g
				return &out, nil
			}
		}
	}
	return nil, nil
}

func (r *AssessmentRepository) Complete(ctx context.Context, c domain.Completion) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assessments[c.AssessmentID]
	if !ok || a.Status == domain.StatusCompleted {
		return false, nil
	}
	var in domain.Completion
	clone(c, &in)
	at := in.CompletedAt
	a.Gaps = in.Gaps
	a.Risks = in.Risks
	a.CreditsUsed = in.CreditsUsed
	a.Status = domain.StatusCompleted
	a.CompletedAt = &at
	return true, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
