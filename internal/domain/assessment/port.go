package assessment

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	// GetWithGapsAndRisks returns nil, nil when the assessment does not exist.
	GetWithGapsAndRisks(ctx context.Context, id string) (*Assessment, error)

	// SaveAnalysis writes the analysis fields only if ai_generated_at still equals
	// expected (nil meaning "never generated"). It reports false when that condition
	// no longer holds; nothing is written in that case.
	SaveAnalysis(ctx context.Context, id string, expected *time.Time, a StoredAnalysis) (bool, error)

	// GetGap returns nil, nil when the gap does not exist.
	GetGap(ctx context.Context, id string) (*Gap, error)

	// Complete stores gaps and risks and flips the assessment to COMPLETED, only if it
	// is not COMPLETED already. It reports false when the assessment was completed first.
	Complete(ctx context.Context, c Completion) (bool, error)
}

// Completion is the write issued at the assessment-completion boundary.
type Completion struct {
	AssessmentID string
	Gaps         []Gap
	Risks        []Risk
	CreditsUsed  int
	CompletedAt  time.Time
}
