package analysis

import (
	"fmt"
	"math"
	"strings"

	domain "github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

const (
	scoreBaseline = 2.0
	scoreCeiling  = 10.0
)

// TemplateContext tailors generated wording to the questionnaire the assessment came from.
type TemplateContext struct {
	Name      string `json:"name,omitempty"`
	Framework string `json:"framework,omitempty"`
}

func (t *TemplateContext) requirement() string {
	if t == nil {
		return "regulatory"
	}
	if f := strings.TrimSpace(t.Framework); f != "" {
		return f
	}
	if n := strings.TrimSpace(t.Name); n != "" {
		return n
	}
	return "regulatory"
}

// ScoreCategory turns one category's gaps into its analysis entry.
// score = min(10, 2 + sum of severity weights), one decimal.
func ScoreCategory(c domain.Category, gaps []domain.Gap, tmpl *TemplateContext) domain.CategoryAnalysis {
	out := domain.CategoryAnalysis{
		TotalGaps:   len(gaps),
		KeyFindings: make([]string, 0, len(gaps)),
	}
	weight := 0
	for _, g := range gaps {
		weight += g.Severity.Weight()
		if g.Severity == domain.SeverityCritical {
			out.CriticalGaps++
		}
		out.KeyFindings = append(out.KeyFindings, keyFinding(g))
	}
	out.Score = round1(math.Min(scoreCeiling, scoreBaseline+float64(weight)))
	out.MitigationStrategies = mitigations(c, out, tmpl)
	return out
}

func keyFinding(g domain.Gap) string {
	title := strings.TrimSpace(g.Title)
	desc := strings.TrimSpace(g.Description)
	sev := strings.ToLower(string(g.Severity))
	if desc == "" {
		return fmt.Sprintf("%s (%s severity)", title, sev)
	}
	return fmt.Sprintf("%s (%s severity): %s", title, sev, desc)
}

// mitigations always yields exactly four entries: remediation, process and controls,
// monitoring, governance and training.
func mitigations(c domain.Category, a domain.CategoryAnalysis, tmpl *TemplateContext) [domain.MitigationCount]string {
	label := c.Label()
	first := fmt.Sprintf("Remediate the %d identified %s gap(s)", a.TotalGaps, label)
	if a.CriticalGaps > 0 {
		first += fmt.Sprintf(", starting with the %d critical item(s)", a.CriticalGaps)
	}
	return [domain.MitigationCount]string{
		first,
		fmt.Sprintf("Update %s policies, procedures and internal controls to meet %s requirements", label, tmpl.requirement()),
		fmt.Sprintf("Implement continuous monitoring and periodic testing of %s controls", label),
		fmt.Sprintf("Establish governance oversight and targeted staff training for %s", label),
	}
}

// GroupByCategory groups gaps keeping their input order inside each group.
func GroupByCategory(gaps []domain.Gap) map[domain.Category][]domain.Gap {
	out := make(map[domain.Category][]domain.Gap)
	for _, g := range gaps {
		out[g.Category] = append(out[g.Category], g)
	}
	return out
}

// OverallRiskScore is the gap-weighted mean of category scores, raised by 0.25 for every
// HIGH or CRITICAL risk record, clamped to 10.
func OverallRiskScore(ra domain.RiskAnalysis, risks []domain.Risk) float64 {
	var sum float64
	var n int
	for _, a := range ra {
		sum += a.Score * float64(a.TotalGaps)
		n += a.TotalGaps
	}
	if n == 0 {
		return 0
	}
	score := sum / float64(n)
	for _, r := range risks {
		if r.RiskLevel == domain.SeverityHigh || r.RiskLevel == domain.SeverityCritical {
			score += 0.25
		}
	}
	return round1(math.Min(scoreCeiling, score))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
