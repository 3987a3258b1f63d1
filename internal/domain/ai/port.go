package ai

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

// BriefRequest is the stored analysis handed to the language model. The model only
// narrates it; scores never come back from it.
type BriefRequest struct {
	AssessmentID   string                   `json:"assessmentId"`
	Framework      string                   `json:"framework,omitempty"`
	RiskScore      float64                  `json:"riskScore"`
	RiskAnalysis   assessment.RiskAnalysis  `json:"riskAnalysis"`
	StrategyMatrix []assessment.StrategyRow `json:"strategyMatrix"`
}

type Client interface {
	Brief(ctx context.Context, req BriefRequest) (string, error)
}
