// Package assessments owns the completion boundary: the one place gaps and risks are
// created and credits are charged.
package assessments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

const DefaultCreditCost = 1

type Requester struct {
	UserID         string
	OrganizationID string
}

// CompleteCommand carries the gaps and risks produced for an assessment.
type CompleteCommand struct {
	AssessmentID string
	Requester    Requester
	Gaps         []domain.Gap
	Risks        []domain.Risk
}

type Service struct {
	Repo       domain.Repository
	Credits    billing.Credits
	Clock      application.Clock
	Log        logging.Logger
	CreditCost int
	NewID      func() string
}

func NewService(repo domain.Repository, credits billing.Credits, clock application.Clock, log logging.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{
		Repo:       repo,
		Credits:    credits,
		Clock:      clock,
		Log:        logging.OrNop(log).Named("assessments"),
		CreditCost: DefaultCreditCost,
		NewID:      uuid.NewString,
	}
}

// Complete validates, charges and stores the completion. Credits are returned when
// another caller completes the assessment first.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*domain.Assessment, error) {
	log := logging.OrNop(s.Log).With(logging.String("assessment_id", cmd.AssessmentID))

	a, err := s.Repo.GetWithGapsAndRisks(ctx, cmd.AssessmentID)
	if err != nil {
		return nil, apperr.Storage(err, "load assessment")
	}
	if a == nil {
		return nil, apperr.ErrAssessmentNotFound.Withf("assessment %s not found", cmd.AssessmentID)
	}
	org := cmd.Requester.OrganizationID
	if a.OrganizationID != org {
		return nil, apperr.ErrAccessDenied.Withf("assessment %s belongs to another organization", cmd.AssessmentID)
	}
	if a.Status == domain.StatusCompleted {
		return nil, apperr.ErrAssessmentAlreadyCompleted.Withf("assessment %s is already completed", cmd.AssessmentID)
	}

	gaps, risks, err := s.prepare(a.ID, cmd.Gaps, cmd.Risks)
	if err != nil {
		return nil, err
	}

	cost := s.CreditCost
	if cost < 0 {
		cost = 0
	}
	if cost > 0 {
		ok, err := s.Credits.Consume(ctx, org, cost)
		if err != nil {
			return nil, apperr.Storage(err, "consume credits")
		}
		if !ok {
			balance, err := s.Credits.Balance(ctx, org)
			if err != nil {
				return nil, apperr.Storage(err, "read credit balance")
			}
			return nil, apperr.ErrInsufficientCredits.Withf("completing an assessment costs %d credit(s), balance is %d", cost, balance)
		}
	}

	completedAt := s.Clock.Now().UTC().Truncate(time.Millisecond)
	ok, err := s.Repo.Complete(ctx, domain.Completion{
		AssessmentID: a.ID,
		Gaps:         gaps,
		Risks:        risks,
		CreditsUsed:  a.CreditsUsed + cost,
		CompletedAt:  completedAt,
	})
	if err != nil || !ok {
		s.refund(ctx, log, org, cost)
		if err != nil {
			return nil, apperr.Storage(err, "complete assessment")
		}
		return nil, apperr.ErrAssessmentAlreadyCompleted.Withf("assessment %s is already completed", cmd.AssessmentID)
	}

	a.Status = domain.StatusCompleted
	a.Gaps = gaps
	a.Risks = risks
	a.CreditsUsed += cost
	a.CompletedAt = &completedAt
	log.Info("assessment completed",
		logging.Int("gaps", len(gaps)),
		logging.Int("risks", len(risks)),
		logging.Int("credits", cost),
	)
	return a, nil
}

// prepare validates and stamps ids on the incoming records.
func (s *Service) prepare(assessmentID string, gaps []domain.Gap, risks []domain.Risk) ([]domain.Gap, []domain.Risk, error) {
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	outG := make([]domain.Gap, 0, len(gaps))
	for _, g := range gaps {
		if g.Priority == "" {
			g.Priority = defaultPriority(g.Severity)
		}
		if err := g.Validate(); err != nil {
			return nil, nil, apperr.ErrInvalidRecord.Withf("%v", err)
		}
		g.ID = newID()
		g.AssessmentID = assessmentID
		outG = append(outG, g)
	}
	outR := make([]domain.Risk, 0, len(risks))
	for _, r := range risks {
		if err := r.Validate(); err != nil {
			return nil, nil, apperr.ErrInvalidRecord.Withf("%v", err)
		}
		r.ID = newID()
		r.AssessmentID = assessmentID
		outR = append(outR, r)
	}
	return outG, outR, nil
}

func defaultPriority(s domain.Severity) domain.Priority {
	switch s {
	case domain.SeverityCritical:
		return domain.PriorityImmediate
	case domain.SeverityHigh:
		return domain.PriorityShortTerm
	case domain.SeverityMedium:
		return domain.PriorityMediumTerm
	default:
		return domain.PriorityLongTerm
	}
}

func (s *Service) refund(ctx context.Context, log logging.Logger, org string, cost int) {
	if cost <= 0 {
		return
	}
	// a late cancellation must not eat the refund
	if err := s.Credits.Refund(context.WithoutCancel(ctx), org, cost); err != nil {
		log.Error("credit refund failed", logging.String("organization_id", org), logging.Int("credits", cost), logging.Err(err))
	}
}
