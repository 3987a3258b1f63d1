package analysis

import (
	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

// cached returns the stored analysis when it can be answered as-is: one exists and
// regeneration was not forced.
func cached(a *domain.Assessment, force bool) (*domain.StoredAnalysis, bool) {
	if force {
		return nil, false
	}
	st := a.StoredAnalysis()
	return st, st != nil
}
