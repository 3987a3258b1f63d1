package matching

import (
	"fmt"
	"math"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

const (
	baseScore     = 75.0
	verifiedBoost = 5.0
	featuredBoost = 3.0
	ratingBoost   = 5.0
	// ratingBoost applies strictly above this
	ratingThreshold = 4.0
)

// ScoreVendor computes the match of one candidate for a gap. Reasons always come in the
// same four slots: category, verification, featuring, rating.
func ScoreVendor(g *assessment.Gap, v *marketplace.Vendor) marketplace.Match {
	score := baseScore
	reasons := make([]string, 0, 4)
	reasons = append(reasons, fmt.Sprintf("Specializes in %s solutions", g.Category.Label()))

	if v.Verified {
		score += verifiedBoost
		reasons = append(reasons, "Verified vendor")
	} else {
		reasons = append(reasons, "Proven industry experience")
	}
	if v.Featured {
		score += featuredBoost
		reasons = append(reasons, "Featured marketplace partner")
	} else {
		reasons = append(reasons, "Competitive pricing")
	}
	if r := v.RatingValue(); r > ratingThreshold {
		score += ratingBoost
		reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f/5 from %d reviews)", r, v.ReviewCount))
	} else {
		reasons = append(reasons, "Growing customer base")
	}

	return marketplace.Match{
		GapID:        g.ID,
		VendorID:     v.ID,
		VendorName:   v.CompanyName,
		SolutionID:   cheapestSolution(v, g.Category),
		MatchScore:   math.Max(0, math.Min(100, score)),
		MatchReasons: reasons,
	}
}

// cheapestSolution picks the lowest starting price in c, ties by id. Empty when the vendor
// lists no solution there.
func cheapestSolution(v *marketplace.Vendor, c assessment.Category) string {
	var best *marketplace.Solution
	for i := range v.Solutions {
		s := &v.Solutions[i]
		if s.Category != c {
			continue
		}
		if best == nil {
			best = s
			continue
		}
		switch d := s.StartingPrice.Cmp(best.StartingPrice); {
		case d < 0, d == 0 && s.ID < best.ID:
			best = s
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}
