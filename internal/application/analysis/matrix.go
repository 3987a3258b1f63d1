package analysis

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

const defaultOwner = "Head of Risk Management"

var businessOwners = map[domain.Category]string{
	domain.CategoryKYCAML:                "Chief Compliance Officer",
	domain.CategoryTransactionMonitoring: "Chief Compliance Officer",
	domain.CategorySanctionsScreening:    "Chief Compliance Officer",
	domain.CategoryRegulatoryReporting:   "Chief Compliance Officer",
	domain.CategoryDataProtection:        "Chief Information Security Officer",
	domain.CategoryDataGovernance:        "Chief Information Security Officer",
	domain.CategoryCybersecurity:         "Chief Information Security Officer",
}

// BusinessOwner resolves the accountable role for a category.
func BusinessOwner(c domain.Category) string {
	if o, ok := businessOwners[c]; ok {
		return o
	}
	return defaultOwner
}

// PriorityFor maps an adjusted risk to a remediation priority.
func PriorityFor(risk float64) domain.Priority {
	switch {
	case risk >= 8:
		return domain.PriorityImmediate
	case risk >= 6:
		return domain.PriorityShortTerm
	case risk >= 4:
		return domain.PriorityMediumTerm
	default:
		return domain.PriorityLongTerm
	}
}

var budgetBands = map[domain.Priority]string{
	domain.PriorityImmediate:  "$50,000 - $150,000",
	domain.PriorityShortTerm:  "$25,000 - $75,000",
	domain.PriorityMediumTerm: "$10,000 - $30,000",
	domain.PriorityLongTerm:   "$5,000 - $15,000",
}

// budget sums the estimated cost of the category's gaps, falling back to a band.
func budget(p domain.Priority, gaps []domain.Gap) string {
	total := decimal.Zero
	for _, g := range gaps {
		total = total.Add(g.EstimatedCost)
	}
	if total.IsPositive() {
		return fmt.Sprintf("$%s", total.StringFixed(2))
	}
	return budgetBands[p]
}

// BuildStrategyMatrix emits one row per analysed category, ordered by adjustedRisk
// descending and category name ascending on ties.
func BuildStrategyMatrix(ra domain.RiskAnalysis, groups map[domain.Category][]domain.Gap) []domain.StrategyRow {
	rows := make([]domain.StrategyRow, 0, len(ra))
	for c, a := range ra {
		p := PriorityFor(a.Score)
		rows = append(rows, domain.StrategyRow{
			Priority:          p,
			RiskArea:          c,
			AdjustedRisk:      a.Score,
			PrimaryMitigation: a.MitigationStrategies[0],
			Timeline:          p.Timeline(),
			Budget:            budget(p, groups[c]),
			BusinessOwner:     BusinessOwner(c),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AdjustedRisk != rows[j].AdjustedRisk {
			return rows[i].AdjustedRisk > rows[j].AdjustedRisk
		}
		return rows[i].RiskArea < rows[j].RiskArea
	})
	return rows
}
