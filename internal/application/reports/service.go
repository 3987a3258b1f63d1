// Package reports turns a stored analysis into artifacts: a JSON archive in object
// storage and a narrative executive briefing.
package reports

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/domain/ai"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// AnalysisSource is the read half of the assessment repository.
type AnalysisSource interface {
	GetWithGapsAndRisks(ctx context.Context, id string) (*assessment.Assessment, error)
}

// ObjectStore uploads a blob and returns where it can be fetched.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Service needs Store for Archive and AI for Briefing; either may be nil when the
// feature is switched off.
type Service struct {
	Source AnalysisSource
	Store  ObjectStore
	AI     ai.Client
	Clock  application.Clock
	Log    logging.Logger
}

func NewService(src AnalysisSource, store ObjectStore, client ai.Client, clock application.Clock, log logging.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Source: src, Store: store, AI: client, Clock: clock, Log: logging.OrNop(log).Named("reports")}
}

// stored loads the assessment and its analysis, enforcing ownership when orgID is set.
func (s *Service) stored(ctx context.Context, id, orgID string) (*assessment.Assessment, *assessment.StoredAnalysis, error) {
	a, err := s.Source.GetWithGapsAndRisks(ctx, id)
	if err != nil {
		return nil, nil, apperr.Storage(err, "load assessment")
	}
	if a == nil {
		return nil, nil, apperr.ErrAssessmentNotFound.Withf("assessment %s not found", id)
	}
	if orgID != "" && a.OrganizationID != orgID {
		return nil, nil, apperr.ErrAccessDenied.Withf("assessment %s belongs to another organization", id)
	}
	st := a.StoredAnalysis()
	if st == nil {
		return nil, nil, apperr.ErrNoAnalysis.Withf("analysis for assessment %s has not been generated", id)
	}
	return a, st, nil
}
