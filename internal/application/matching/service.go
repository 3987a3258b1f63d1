// Package matching ranks marketplace vendors against assessment gaps and compares
// shortlisted vendors side by side. Both operations are reads.
package matching

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

const (
	DefaultLimit = 10
	DefaultMax   = 50
)

// GapSource is the slice of the assessment repository the ranker reads.
type GapSource interface {
	GetGap(ctx context.Context, id string) (*assessment.Gap, error)
	GetWithGapsAndRisks(ctx context.Context, id string) (*assessment.Assessment, error)
}

type Service struct {
	Gaps    GapSource
	Vendors marketplace.Repository
	Log     logging.Logger

	DefaultLimit int
	MaxLimit     int
}

func NewService(gaps GapSource, vendors marketplace.Repository, log logging.Logger) *Service {
	return &Service{
		Gaps:         gaps,
		Vendors:      vendors,
		Log:          logging.OrNop(log).Named("matching"),
		DefaultLimit: DefaultLimit,
		MaxLimit:     DefaultMax,
	}
}

func (s *Service) limit(requested int) int {
	def := s.DefaultLimit
	if def <= 0 {
		def = DefaultLimit
	}
	n := requested
	if n <= 0 {
		n = def
	}
	if s.MaxLimit > 0 && n > s.MaxLimit {
		n = s.MaxLimit
	}
	return n
}
