package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bryanwahyu/complyhub/internal/domain/ai"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

type Briefing struct {
	AssessmentID string    `json:"assessmentId"`
	Text         string    `json:"text"`
	AnalysisAt   time.Time `json:"analysisGeneratedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Briefing asks the AI client for a narrative summary of the stored analysis.
// framework only steers the wording.
func (s *Service) Briefing(ctx context.Context, assessmentID, orgID, framework string) (*Briefing, error) {
	if s.AI == nil {
		return nil, apperr.ErrFeatureDisabled.Withf("executive briefing is not configured")
	}
	a, st, err := s.stored(ctx, assessmentID, orgID)
	if err != nil {
		return nil, err
	}

	text, err := s.AI.Brief(ctx, ai.BriefRequest{
		AssessmentID:   a.ID,
		Framework:      strings.TrimSpace(framework),
		RiskScore:      st.RiskScore,
		RiskAnalysis:   st.RiskAnalysis,
		StrategyMatrix: st.StrategyMatrix,
	})
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			logging.OrNop(s.Log).Warn("ai quota exceeded", logging.String("assessment_id", a.ID))
			return nil, apperr.ErrAIQuotaExceeded.Wrap(err)
		}
		return nil, apperr.ErrAIUnavailable.Wrap(err)
	}

	return &Briefing{
		AssessmentID: a.ID,
		Text:         strings.TrimSpace(text),
		AnalysisAt:   st.GeneratedAt,
		CreatedAt:    s.Clock.Now().UTC(),
	}, nil
}
