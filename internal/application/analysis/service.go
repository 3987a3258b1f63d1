package analysis

import (
	"context"
	"time"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// Recorder receives one outcome per Generate call. Optional.
type Recorder interface {
	AnalysisOutcome(outcome string)
}

const (
	OutcomeGenerated   = "generated"
	OutcomeRegenerated = "regenerated"
	OutcomeCached      = "cached"
	OutcomeConflict    = "conflict"
	OutcomeRejected    = "rejected"
)

// Service generates and stores the risk analysis of an assessment.
// It holds no state of its own and is safe for concurrent use.
type Service struct {
	Repo    domain.Repository
	Clock   application.Clock
	Log     logging.Logger
	Metrics Recorder
}

func NewService(repo domain.Repository, clock application.Clock, log logging.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Repo: repo, Clock: clock, Log: logging.OrNop(log).Named("analysis")}
}

// GenerateOptions tweaks a Generate call.
type GenerateOptions struct {
	ForceRegenerate bool
	Template        *TemplateContext
	// OrganizationID, when set, must own the assessment.
	OrganizationID string
}

// Result is the analysis as stored on the assessment.
type Result struct {
	RiskAnalysis   domain.RiskAnalysis  `json:"riskAnalysis"`
	StrategyMatrix []domain.StrategyRow `json:"strategyMatrix"`
	GeneratedAt    time.Time            `json:"generatedAt"`
	RiskScore      float64              `json:"riskScore"`
	Cached         bool                 `json:"cached"`
}

func fromStored(st *domain.StoredAnalysis, cached bool) *Result {
	return &Result{
		RiskAnalysis:   st.RiskAnalysis,
		StrategyMatrix: st.StrategyMatrix,
		GeneratedAt:    st.GeneratedAt,
		RiskScore:      st.RiskScore,
		Cached:         cached,
	}
}

// Generate returns the stored analysis of an assessment, computing and persisting it
// first when none exists or when regeneration is forced.
//
// The read-decide-write sequence relies on the repository's conditional write: only the
// caller whose expected ai_generated_at still matches gets to write, every other caller
// answers with the value that won.
func (s *Service) Generate(ctx context.Context, id string, opts GenerateOptions) (*Result, error) {
	log := logging.OrNop(s.Log).With(logging.String("assessment_id", id))

	a, err := s.Repo.GetWithGapsAndRisks(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err, "load assessment")
	}
	if a == nil {
		s.record(OutcomeRejected)
		return nil, apperr.ErrAssessmentNotFound.Withf("assessment %s not found", id)
	}
	if opts.OrganizationID != "" && a.OrganizationID != opts.OrganizationID {
		s.record(OutcomeRejected)
		return nil, apperr.ErrAccessDenied.Withf("assessment %s belongs to another organization", id)
	}
	if len(a.Gaps) == 0 {
		s.record(OutcomeRejected)
		return nil, apperr.ErrNoGapsFound.Withf("No gaps found for assessment %s", id)
	}

	if st, ok := cached(a, opts.ForceRegenerate); ok {
		s.record(OutcomeCached)
		log.Debug("analysis served from store", logging.Any("generated_at", st.GeneratedAt))
		return fromStored(st, true), nil
	}

	computed := Compute(a.Gaps, a.Risks, opts.Template)
	computed.GeneratedAt = s.nextGeneratedAt(a.AIGeneratedAt)

	ok, err := s.Repo.SaveAnalysis(ctx, id, a.AIGeneratedAt, computed)
	if err != nil {
		return nil, apperr.Storage(err, "save analysis")
	}
	if !ok {
		s.record(OutcomeConflict)
		log.Info("analysis write lost to a concurrent generation")
		return s.current(ctx, id)
	}

	outcome := OutcomeGenerated
	if a.HasAnalysis() {
		outcome = OutcomeRegenerated
	}
	s.record(outcome)
	log.Info("analysis stored",
		logging.String("outcome", outcome),
		logging.Int("categories", len(computed.RiskAnalysis)),
		logging.Float64("risk_score", computed.RiskScore),
	)
	return fromStored(&computed, false), nil
}

// current re-reads the analysis after a lost conditional write.
func (s *Service) current(ctx context.Context, id string) (*Result, error) {
	a, err := s.Repo.GetWithGapsAndRisks(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err, "reload assessment")
	}
	if a == nil {
		return nil, apperr.ErrAssessmentNotFound.Withf("assessment %s not found", id)
	}
	st := a.StoredAnalysis()
	if st == nil {
		return nil, apperr.ErrAnalysisConflict.Withf("analysis for assessment %s changed concurrently", id)
	}
	return fromStored(st, true), nil
}

// nextGeneratedAt is millisecond precision (what the SQL columns keep) and strictly
// after prev.
func (s *Service) nextGeneratedAt(prev *time.Time) time.Time {
	clock := s.Clock
	if clock == nil {
		clock = application.SystemClock{}
	}
	now := clock.Now().UTC().Truncate(time.Millisecond)
	if prev != nil && !now.After(*prev) {
		now = prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

func (s *Service) record(outcome string) {
	if s.Metrics != nil {
		s.Metrics.AnalysisOutcome(outcome)
	}
}

// Compute is the pure part of generation: score every category, build the matrix and the
// overall risk score. GeneratedAt is left zero.
func Compute(gaps []domain.Gap, risks []domain.Risk, tmpl *TemplateContext) domain.StoredAnalysis {
	groups := GroupByCategory(gaps)

	ra := make(domain.RiskAnalysis, len(groups))
	for c, gs := range groups {
		ra[c] = ScoreCategory(c, gs, tmpl)
	}

	return domain.StoredAnalysis{
		RiskScore:      OverallRiskScore(ra, risks),
		RiskAnalysis:   ra,
		StrategyMatrix: BuildStrategyMatrix(ra, groups),
	}
}
