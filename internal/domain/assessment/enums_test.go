package assessment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("kyc-aml")
	require.NoError(t, err)
	assert.Equal(t, CategoryKYCAML, c)

	c, err = ParseCategory(" DATA_PROTECTION ")
	require.NoError(t, err)
	assert.Equal(t, CategoryDataProtection, c)

	_, err = ParseCategory("astrology")
	assert.Error(t, err)
}

func TestCategories_AllValidAndLabelled(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
		assert.NotEmpty(t, c.Label(), c)
	}
	assert.Equal(t, "KYC/AML", CategoryKYCAML.Label())
	assert.Equal(t, "made up", Category("MADE_UP").Label())
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 4, SeverityCritical.Weight())
	assert.Equal(t, 3, SeverityHigh.Weight())
	assert.Equal(t, 2, SeverityMedium.Weight())
	assert.Equal(t, 1, SeverityLow.Weight())
	assert.Equal(t, 0, Severity("SEVERE").Weight())

	s, err := ParseSeverity("high")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, s)
	_, err = ParseSeverity("severe")
	assert.Error(t, err)
}

func TestPriorityTimeline(t *testing.T) {
	assert.Equal(t, "0-30 days", PriorityImmediate.Timeline())
	assert.Equal(t, "1-3 months", PriorityShortTerm.Timeline())
	assert.Equal(t, "3-6 months", PriorityMediumTerm.Timeline())
	assert.Equal(t, "6-12 months", PriorityLongTerm.Timeline())
}

func TestGapValidate(t *testing.T) {
	ok := Gap{Title: "No CDD", Category: CategoryKYCAML, Severity: SeverityHigh, Priority: PriorityImmediate}
	assert.NoError(t, ok.Validate())

	bad := []Gap{
		{Title: "x", Category: "NOPE", Severity: SeverityHigh},
		{Title: "x", Category: CategoryKYCAML, Severity: "NOPE"},
		{Title: "x", Category: CategoryKYCAML, Severity: SeverityLow, Priority: "SOON"},
		{Title: " ", Category: CategoryKYCAML, Severity: SeverityLow},
		{Title: "x", Category: CategoryKYCAML, Severity: SeverityLow, EstimatedCost: decimal.NewFromInt(-1)},
	}
	for _, g := range bad {
		assert.Error(t, g.Validate(), g)
	}
}

func TestRiskValidate(t *testing.T) {
	ok := Risk{Title: "Fines", Category: RiskRegulatory, Likelihood: 3, Impact: 5, RiskLevel: SeverityHigh}
	assert.NoError(t, ok.Validate())

	assert.Error(t, Risk{Title: "Fines", Category: "LEGAL"}.Validate())
	assert.Error(t, Risk{Title: "Fines", Category: RiskRegulatory, Likelihood: 6}.Validate())
	assert.Error(t, Risk{Title: "Fines", Category: RiskRegulatory, RiskLevel: "EXTREME"}.Validate())
}

func TestStoredAnalysis(t *testing.T) {
	a := &Assessment{ID: "a-1"}
	assert.False(t, a.HasAnalysis())
	assert.Nil(t, a.StoredAnalysis())
}
