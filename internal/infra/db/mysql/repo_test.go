package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var assessmentCols = []string{
	"id", "organization_id", "user_id", "template_id", "status", "responses",
	"risk_score", "credits_used", "ai_risk_analysis", "ai_strategy_matrix",
	"ai_generated_at", "completed_at",
}

func TestDSN(t *testing.T) {
	dsn := DSN("db.local", 3307, "app", "s3cret", "complyhub")
	assert.Contains(t, dsn, "app:s3cret@tcp(db.local:3307)/complyhub")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestAssessmentRepository_SaveAnalysis(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAssessmentRepository(db)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st := assessment.StoredAnalysis{RiskScore: 7.7, GeneratedAt: at}

	mock.ExpectExec(regexp.QuoteMeta("WHERE id=? AND ai_generated_at <=> ?")).
		WithArgs(7.7, sqlmock.AnyArg(), sqlmock.AnyArg(), at, "asm-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.SaveAnalysis(context.Background(), "asm-1", nil, st)
	require.NoError(t, err)
	assert.True(t, ok)

	prev := at.Add(-time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("ai_generated_at <=> ?")).
		WithArgs(7.7, sqlmock.AnyArg(), sqlmock.AnyArg(), at, "asm-1", prev).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.SaveAnalysis(context.Background(), "asm-1", &prev, st)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssessmentRepository_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(assessmentCols))

	a, err := NewAssessmentRepository(db).GetWithGapsAndRisks(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAssessmentRepository_GetWithGapsAndRisks(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments")).
		WithArgs("asm-1").
		WillReturnRows(sqlmock.NewRows(assessmentCols).AddRow(
			"asm-1", "org-1", "u1", "tpl-1", "COMPLETED", nil,
			7.7, 1, `{"KYC_AML":{"score":9,"totalGaps":2,"criticalGaps":1,"keyFindings":["a","b"],"mitigationStrategies":["1","2","3","4"]}}`,
			`[{"priority":"IMMEDIATE","riskArea":"KYC_AML","adjustedRisk":9}]`,
			at, at,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM gaps")).
		WithArgs("asm-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "category", "title", "description", "severity", "priority", "estimated_cost", "estimated_effort"}).
			AddRow("g1", "asm-1", "KYC_AML", "No CDD", "desc", "CRITICAL", "IMMEDIATE", "1200.50", "2 weeks"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM risks")).
		WithArgs("asm-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "category", "title", "description", "likelihood", "impact", "risk_level", "mitigation_strategy"}).
			AddRow("r1", "asm-1", "REGULATORY", "Fine", "desc", 3, 5, "HIGH", ""))

	a, err := NewAssessmentRepository(db).GetWithGapsAndRisks(context.Background(), "asm-1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, assessment.StatusCompleted, a.Status)
	require.NotNil(t, a.RiskScore)
	assert.Equal(t, 7.7, *a.RiskScore)
	require.True(t, a.HasAnalysis())
	assert.True(t, at.Equal(*a.AIGeneratedAt))
	assert.Equal(t, 9.0, a.AIRiskAnalysis[assessment.CategoryKYCAML].Score)
	require.Len(t, a.AIStrategyMatrix, 1)
	require.Len(t, a.Gaps, 1)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(a.Gaps[0].EstimatedCost))
	assert.Equal(t, assessment.SeverityCritical, a.Gaps[0].Severity)
	require.Len(t, a.Risks, 1)
	assert.Equal(t, 5, a.Risks[0].Impact)
}

func TestAssessmentRepository_Complete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAssessmentRepository(db)
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	c := assessment.Completion{
		AssessmentID: "asm-1",
		Gaps:         []assessment.Gap{{ID: "g1", Category: assessment.CategoryKYCAML, Severity: assessment.SeverityHigh, Priority: assessment.PriorityShortTerm, Title: "t"}},
		Risks:        []assessment.Risk{{ID: "r1", Category: assessment.RiskRegulatory, Title: "r"}},
		CreditsUsed:  1,
		CompletedAt:  at,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assessments SET status=?")).
		WithArgs("COMPLETED", at, 1, "asm-1", "COMPLETED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO gaps")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO risks")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Complete(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assessments SET status=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err = repo.Complete(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVendorRepository_ListApprovedByCategory(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("JSON_CONTAINS(categories, JSON_QUOTE(?))")).
		WithArgs("APPROVED", "KYC_AML").
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "categories", "status", "featured", "verified", "rating", "review_count"}).
			AddRow("v1", "Acme", `["KYC_AML","TRAINING"]`, "APPROVED", true, false, 4.5, 12).
			AddRow("v2", "Beta", `["KYC_AML"]`, "APPROVED", false, true, nil, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE vendor_id IN (?,?)")).
		WithArgs("v1", "v2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "name", "category", "pricing_model", "starting_price"}).
			AddRow("s1", "v1", "KYC Suite", "KYC_AML", "SUBSCRIPTION", "499.00"))

	got, err := NewVendorRepository(db).ListApprovedByCategory(context.Background(), assessment.CategoryKYCAML)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []assessment.Category{assessment.CategoryKYCAML, assessment.CategoryTraining}, got[0].Categories)
	require.NotNil(t, got[0].Rating)
	assert.Equal(t, 4.5, *got[0].Rating)
	assert.Nil(t, got[1].Rating)
	require.Len(t, got[0].Solutions, 1)
	assert.Empty(t, got[1].Solutions)
}

func TestVendorRepository_ApprovedIDs(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM vendors WHERE status=? AND id IN (?,?);")).
		WithArgs(marketplace.StatusApproved, "v1", "v2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("v2"))

	got, err := NewVendorRepository(db).ApprovedIDs(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"v2": true}, got)

	got, err = NewVendorRepository(db).ApprovedIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVendorRepository_CreateContact(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO vendor_contacts")).
		WithArgs("c1", "v1", "u1", "org-1", "RFP", "hello", "PENDING", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewVendorRepository(db).CreateContact(context.Background(), &marketplace.Contact{
		ID: "c1", VendorID: "v1", UserID: "u1", OrganizationID: "org-1",
		Type: marketplace.ContactRFP, Message: "hello", Status: marketplace.ContactStatusPending, CreatedAt: at,
	})
	assert.NoError(t, err)
}

func TestBillingRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBillingRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT plan FROM subscriptions")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"plan"}))
	p, err := repo.CurrentPlan(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanFree, p)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT plan FROM subscriptions")).
		WithArgs("org-2").
		WillReturnRows(sqlmock.NewRows([]string{"plan"}).AddRow("PREMIUM"))
	p, err = repo.CurrentPlan(ctx, "org-2")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanPremium, p)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credit_balances SET balance = balance - ?")).
		WithArgs(1, "org-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err := repo.Consume(ctx, "org-1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
