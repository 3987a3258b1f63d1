package assessment

import (
	"time"
)

// MitigationCount is the fixed number of mitigation strategies per category.
const MitigationCount = 4

// CategoryAnalysis is the scored view of one category's gaps.
type CategoryAnalysis struct {
	Score                float64                 `json:"score"`
	TotalGaps            int                     `json:"totalGaps"`
	CriticalGaps         int                     `json:"criticalGaps"`
	KeyFindings          []string                `json:"keyFindings"`
	MitigationStrategies [MitigationCount]string `json:"mitigationStrategies"`
}

// RiskAnalysis maps each category that has gaps to its analysis.
type RiskAnalysis map[Category]CategoryAnalysis

// StrategyRow is one line of the mitigation strategy matrix.
type StrategyRow struct {
	Priority          Priority `json:"priority"`
	RiskArea          Category `json:"riskArea"`
	AdjustedRisk      float64  `json:"adjustedRisk"`
	PrimaryMitigation string   `json:"primaryMitigation"`
	Timeline          string   `json:"timeline"`
	Budget            string   `json:"budget"`
	BusinessOwner     string   `json:"businessOwner"`
}

// StoredAnalysis is what the engine writes onto an assessment.
type StoredAnalysis struct {
	RiskScore      float64       `json:"riskScore"`
	RiskAnalysis   RiskAnalysis  `json:"riskAnalysis"`
	StrategyMatrix []StrategyRow `json:"strategyMatrix"`
	GeneratedAt    time.Time     `json:"generatedAt"`
}
