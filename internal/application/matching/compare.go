package matching

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

const (
	MinCompare = 2
	MaxCompare = 4
)

// ComparisonEntry is one column of the comparison matrix.
type ComparisonEntry struct {
	VendorID    string                `json:"vendorId"`
	CompanyName string                `json:"companyName"`
	Categories  []assessment.Category `json:"categories"`
	Rating      *float64              `json:"rating"`
	ReviewCount int                   `json:"reviewCount"`
	Verified    bool                  `json:"verified"`
	Featured    bool                  `json:"featured"`
}

type Summary struct {
	Categories   []assessment.Category `json:"categories"`
	AvgRating    float64               `json:"avgRating"`
	TotalReviews int                   `json:"totalReviews"`
}

type Comparison struct {
	Matrix  []ComparisonEntry `json:"matrix"`
	Summary Summary           `json:"summary"`
}

type CompareResult struct {
	Vendors    []*marketplace.Vendor `json:"vendors"`
	Comparison Comparison            `json:"comparison"`
}

// CompareVendors loads 2..4 approved vendors and aggregates them in input order.
func (s *Service) CompareVendors(ctx context.Context, ids []string) (*CompareResult, error) {
	if len(ids) < MinCompare || len(ids) > MaxCompare {
		return nil, apperr.ErrInvalidVendorCount.Withf("between %d and %d vendors can be compared, got %d", MinCompare, MaxCompare, len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, apperr.ErrDuplicateVendor.Withf("vendor %s listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	vendors := make([]*marketplace.Vendor, 0, len(ids))
	for _, id := range ids {
		v, err := s.Vendors.Get(ctx, id)
		if err != nil {
			return nil, apperr.Storage(err, "load vendor")
		}
		if v == nil || !v.Approved() {
			return nil, apperr.ErrVendorNotFound.Withf("vendor %s not found", id)
		}
		vendors = append(vendors, v)
	}
	return &CompareResult{Vendors: vendors, Comparison: Compare(vendors)}, nil
}

// Compare is the pure aggregation. A missing rating counts as 0 in the mean.
func Compare(vendors []*marketplace.Vendor) Comparison {
	out := Comparison{Matrix: make([]ComparisonEntry, 0, len(vendors))}
	seen := map[assessment.Category]bool{}
	var ratingSum float64
	for _, v := range vendors {
		out.Matrix = append(out.Matrix, ComparisonEntry{
			VendorID:    v.ID,
			CompanyName: v.CompanyName,
			Categories:  v.Categories,
			Rating:      v.Rating,
			ReviewCount: v.ReviewCount,
			Verified:    v.Verified,
			Featured:    v.Featured,
		})
		for _, c := range v.Categories {
			if !seen[c] {
				seen[c] = true
				out.Summary.Categories = append(out.Summary.Categories, c)
			}
		}
		ratingSum += v.RatingValue()
		out.Summary.TotalReviews += v.ReviewCount
	}
	if len(vendors) > 0 {
		out.Summary.AvgRating = ratingSum / float64(len(vendors))
	}
	if out.Summary.Categories == nil {
		out.Summary.Categories = []assessment.Category{}
	}
	return out
}
