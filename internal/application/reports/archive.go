package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// Snapshot is the archived document.
type Snapshot struct {
	AssessmentID   string                   `json:"assessmentId"`
	OrganizationID string                   `json:"organizationId"`
	RiskScore      float64                  `json:"riskScore"`
	RiskAnalysis   assessment.RiskAnalysis  `json:"riskAnalysis"`
	StrategyMatrix []assessment.StrategyRow `json:"strategyMatrix"`
	GeneratedAt    time.Time                `json:"generatedAt"`
}

type Archived struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ArchiveKey is <org>/<assessment>/analysis-<generatedAt unix millis>.json.
func ArchiveKey(orgID, assessmentID string, generatedAt time.Time) string {
	return fmt.Sprintf("%s/%s/analysis-%d.json", orgID, assessmentID, generatedAt.UnixMilli())
}

// Archive uploads the stored analysis as JSON. Archiving the same generation twice
// overwrites the same object.
func (s *Service) Archive(ctx context.Context, assessmentID, orgID string) (*Archived, error) {
	if s.Store == nil {
		return nil, apperr.ErrFeatureDisabled.Withf("analysis archive is not configured")
	}
	a, st, err := s.stored(ctx, assessmentID, orgID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(Snapshot{
		AssessmentID:   a.ID,
		OrganizationID: a.OrganizationID,
		RiskScore:      st.RiskScore,
		RiskAnalysis:   st.RiskAnalysis,
		StrategyMatrix: st.StrategyMatrix,
		GeneratedAt:    st.GeneratedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	key := ArchiveKey(a.OrganizationID, a.ID, st.GeneratedAt)
	url, err := s.Store.Upload(ctx, key, body, "application/json")
	if err != nil {
		return nil, apperr.Storage(err, "upload archive")
	}
	logging.OrNop(s.Log).Info("analysis archived",
		logging.String("assessment_id", a.ID),
		logging.String("key", key),
		logging.Int("bytes", len(body)),
	)
	return &Archived{Key: key, URL: url}, nil
}
