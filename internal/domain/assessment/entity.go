package assessment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Response is one questionnaire answer.
type Response struct {
	Value     any            `json:"value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Gap is a compliance deficiency found in one category of an assessment.
type Gap struct {
	ID              string          `json:"id"`
	AssessmentID    string          `json:"assessment_id"`
	Category        Category        `json:"category"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Severity        Severity        `json:"severity"`
	Priority        Priority        `json:"priority"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	EstimatedEffort string          `json:"estimated_effort,omitempty"`
}

// Risk is a forward-looking consequence, scored by likelihood x impact.
type Risk struct {
	ID                 string       `json:"id"`
	AssessmentID       string       `json:"assessment_id"`
	Category           RiskCategory `json:"category"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Likelihood         int          `json:"likelihood"`
	Impact             int          `json:"impact"`
	RiskLevel          Severity     `json:"risk_level"`
	MitigationStrategy string       `json:"mitigation_strategy,omitempty"`
}

// Aggregate Root: Assessment
type Assessment struct {
	ID               string              `json:"id"`
	OrganizationID   string              `json:"organization_id"`
	UserID           string              `json:"user_id"`
	TemplateID       string              `json:"template_id"`
	Status           Status              `json:"status"`
	Responses        map[string]Response `json:"responses,omitempty"`
	RiskScore        *float64            `json:"risk_score"`
	CreditsUsed      int                 `json:"credits_used"`
	AIRiskAnalysis   RiskAnalysis        `json:"ai_risk_analysis"`
	AIStrategyMatrix []StrategyRow       `json:"ai_strategy_matrix"`
	AIGeneratedAt    *time.Time          `json:"ai_generated_at"`
	CompletedAt      *time.Time          `json:"completed_at"`

	Gaps  []Gap  `json:"gaps,omitempty"`
	Risks []Risk `json:"risks,omitempty"`
}

// HasAnalysis reports whether the analysis fields have been written.
func (a *Assessment) HasAnalysis() bool {
	return a.AIGeneratedAt != nil
}

// StoredAnalysis returns the persisted analysis fields, or nil if none.
func (a *Assessment) StoredAnalysis() *StoredAnalysis {
	if !a.HasAnalysis() {
		return nil
	}
	var score float64
	if a.RiskScore != nil {
		score = *a.RiskScore
	}
	return &StoredAnalysis{
		RiskScore:      score,
		RiskAnalysis:   a.AIRiskAnalysis,
		StrategyMatrix: a.AIStrategyMatrix,
		GeneratedAt:    *a.AIGeneratedAt,
	}
}
