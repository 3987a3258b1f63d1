package assessment

import (
	"fmt"
	"strings"
)

// Validate checks a gap against the closed enums.
func (g Gap) Validate() error {
	if !g.Category.Valid() {
		return fmt.Errorf("gap %q: unknown category %q", g.Title, g.Category)
	}
	if !g.Severity.Valid() {
		return fmt.Errorf("gap %q: unknown severity %q", g.Title, g.Severity)
	}
	if g.Priority != "" && !g.Priority.Valid() {
		return fmt.Errorf("gap %q: unknown priority %q", g.Title, g.Priority)
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("gap title is required")
	}
	if g.EstimatedCost.IsNegative() {
		return fmt.Errorf("gap %q: estimated cost must not be negative", g.Title)
	}
	return nil
}

// Validate checks a risk against the closed enums.
func (r Risk) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("risk %q: unknown category %q", r.Title, r.Category)
	}
	if r.RiskLevel != "" && !r.RiskLevel.Valid() {
		return fmt.Errorf("risk %q: unknown risk level %q", r.Title, r.RiskLevel)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("risk title is required")
	}
	if r.Likelihood < 0 || r.Likelihood > 5 || r.Impact < 0 || r.Impact > 5 {
		return fmt.Errorf("risk %q: likelihood and impact must be within 0..5", r.Title)
	}
	return nil
}
