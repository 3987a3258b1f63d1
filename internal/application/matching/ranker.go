package matching

import (
	"context"
	"sort"

	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// Filters narrows MatchVendorsForGap.
type Filters struct {
	// MinScore drops matches scoring below it. Zero or less disables the filter.
	MinScore float64
	// Limit caps the result after sorting. Zero or less means the default.
	Limit int
	// OrganizationID, when set, must own the gap's assessment.
	OrganizationID string
}

// MatchVendorsForGap ranks approved vendors serving the gap's category. No candidates
// is an empty result, not an error.
func (s *Service) MatchVendorsForGap(ctx context.Context, gapID string, f Filters) ([]marketplace.Match, error) {
	g, err := s.Gaps.GetGap(ctx, gapID)
	if err != nil {
		return nil, apperr.Storage(err, "load gap")
	}
	if g == nil {
		return nil, apperr.ErrGapNotFound.Withf("gap %s not found", gapID)
	}
	if f.OrganizationID != "" {
		a, err := s.Gaps.GetWithGapsAndRisks(ctx, g.AssessmentID)
		if err != nil {
			return nil, apperr.Storage(err, "load assessment")
		}
		if a == nil || a.OrganizationID != f.OrganizationID {
			return nil, apperr.ErrAccessDenied.Withf("gap %s belongs to another organization", gapID)
		}
	}

	candidates, err := s.Vendors.ListApprovedByCategory(ctx, g.Category)
	if err != nil {
		return nil, apperr.Storage(err, "list vendors")
	}

	out := make([]marketplace.Match, 0, len(candidates))
	for _, v := range candidates {
		// repositories filter already; keep the invariant local
		if v == nil || !v.Approved() || !v.Serves(g.Category) {
			continue
		}
		m := ScoreVendor(g, v)
		if f.MinScore > 0 && m.MatchScore < f.MinScore {
			continue
		}
		out = append(out, m)
	}
	Rank(out)

	n := s.limit(f.Limit)
	if len(out) > n {
		out = out[:n]
	}
	logging.OrNop(s.Log).Debug("vendors matched",
		logging.String("gap_id", gapID),
		logging.String("category", string(g.Category)),
		logging.Int("candidates", len(candidates)),
		logging.Int("returned", len(out)),
	)
	return out, nil
}

// Rank orders by score descending, vendor id ascending on ties.
func Rank(ms []marketplace.Match) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].MatchScore != ms[j].MatchScore {
			return ms[i].MatchScore > ms[j].MatchScore
		}
		return ms[i].VendorID < ms[j].VendorID
	})
}
