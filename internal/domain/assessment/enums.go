package assessment

import (
	"fmt"
	"strings"
)

// Status of an assessment
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Category is the compliance domain a Gap belongs to. Vendors declare the same set.
type Category string

const (
	CategoryKYCAML                Category = "KYC_AML"
	CategoryTransactionMonitoring Category = "TRANSACTION_MONITORING"
	CategorySanctionsScreening    Category = "SANCTIONS_SCREENING"
	CategoryDataProtection        Category = "DATA_PROTECTION"
	CategoryDataGovernance        Category = "DATA_GOVERNANCE"
	CategoryCybersecurity         Category = "CYBERSECURITY"
	CategoryRegulatoryReporting   Category = "REGULATORY_REPORTING"
	CategoryRiskAssessment        Category = "RISK_ASSESSMENT"
	CategoryGovernance            Category = "GOVERNANCE"
	CategoryThirdPartyRisk        Category = "THIRD_PARTY_RISK"
	CategoryOperationalResilience Category = "OPERATIONAL_RESILIENCE"
	CategoryTraining              Category = "TRAINING"
)

var categoryLabels = map[Category]string{
	CategoryKYCAML:                "KYC/AML",
	CategoryTransactionMonitoring: "transaction monitoring",
	CategorySanctionsScreening:    "sanctions screening",
	CategoryDataProtection:        "data protection",
	CategoryDataGovernance:        "data governance",
	CategoryCybersecurity:         "cybersecurity",
	CategoryRegulatoryReporting:   "regulatory reporting",
	CategoryRiskAssessment:        "risk assessment",
	CategoryGovernance:            "governance",
	CategoryThirdPartyRisk:        "third-party risk",
	CategoryOperationalResilience: "operational resilience",
	CategoryTraining:              "compliance training",
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryKYCAML, CategoryTransactionMonitoring, CategorySanctionsScreening,
		CategoryDataProtection, CategoryDataGovernance, CategoryCybersecurity,
		CategoryRegulatoryReporting, CategoryRiskAssessment, CategoryGovernance,
		CategoryThirdPartyRisk, CategoryOperationalResilience, CategoryTraining,
	}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the human wording used in generated text.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return strings.ToLower(strings.ReplaceAll(string(c), "_", " "))
}

// ParseCategory accepts any casing and either '-' or '_' as separator.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Severity of a gap, also reused as a risk level.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Weight used by the category scorer.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool { return s.Weight() > 0 }

func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return v, nil
}

// Priority of a gap and of a strategy matrix row.
type Priority string

const (
	PriorityImmediate  Priority = "IMMEDIATE"
	PriorityShortTerm  Priority = "SHORT_TERM"
	PriorityMediumTerm Priority = "MEDIUM_TERM"
	PriorityLongTerm   Priority = "LONG_TERM"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityImmediate, PriorityShortTerm, PriorityMediumTerm, PriorityLongTerm:
		return true
	}
	return false
}

// Timeline is the remediation window communicated for a priority.
func (p Priority) Timeline() string {
	switch p {
	case PriorityImmediate:
		return "0-30 days"
	case PriorityShortTerm:
		return "1-3 months"
	case PriorityMediumTerm:
		return "3-6 months"
	default:
		return "6-12 months"
	}
}

// RiskCategory is the forward-looking classification of a Risk.
type RiskCategory string

const (
	RiskRegulatory   RiskCategory = "REGULATORY"
	RiskOperational  RiskCategory = "OPERATIONAL"
	RiskGeographic   RiskCategory = "GEOGRAPHIC"
	RiskTransaction  RiskCategory = "TRANSACTION"
	RiskGovernance   RiskCategory = "GOVERNANCE"
	RiskReputational RiskCategory = "REPUTATIONAL"
)

func (r RiskCategory) Valid() bool {
	switch r {
	case RiskRegulatory, RiskOperational, RiskGeographic, RiskTransaction, RiskGovernance, RiskReputational:
		return true
	}
	return false
}
