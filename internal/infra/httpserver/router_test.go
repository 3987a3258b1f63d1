package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/complyhub/internal/application/analysis"
	"github.com/bryanwahyu/complyhub/internal/application/assessments"
	"github.com/bryanwahyu/complyhub/internal/application/contact"
	"github.com/bryanwahyu/complyhub/internal/application/matching"
	"github.com/bryanwahyu/complyhub/internal/application/reports"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/infra/db/memory"
	"github.com/bryanwahyu/complyhub/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type stubReports struct {
	archiveErr  error
	briefingErr error
}

func (s stubReports) Archive(_ context.Context, id, org string) (*reports.Archived, error) {
	if s.archiveErr != nil {
		return nil, s.archiveErr
	}
	return &reports.Archived{Key: org + "/" + id + "/analysis-1.json"}, nil
}

func (s stubReports) Briefing(_ context.Context, id, _, framework string) (*reports.Briefing, error) {
	if s.briefingErr != nil {
		return nil, s.briefingErr
	}
	return &reports.Briefing{AssessmentID: id, Text: "brief for " + framework}, nil
}

type harness struct {
	h     http.Handler
	store *memory.Store
}

func newHarness(t *testing.T, rep Reporter) *harness {
	t.Helper()
	store := memory.NewStore()
	store.PutAssessment(&assessment.Assessment{
		ID:             "asm-1",
		OrganizationID: "org-1",
		Status:         assessment.StatusCompleted,
		Gaps: []assessment.Gap{{
			ID: "gap-1", AssessmentID: "asm-1", Category: assessment.CategoryKYCAML,
			Severity: assessment.SeverityCritical, Title: "No CDD refresh",
		}},
	})
	store.PutAssessment(&assessment.Assessment{ID: "asm-open", OrganizationID: "org-1", Status: assessment.StatusInProgress})
	store.PutAssessment(&assessment.Assessment{ID: "asm-other", OrganizationID: "org-2", Status: assessment.StatusCompleted})
	kyc := []assessment.Category{assessment.CategoryKYCAML}
	store.PutVendor(&marketplace.Vendor{ID: "v1", CompanyName: "Acme", Status: marketplace.StatusApproved, Categories: kyc, Verified: true})
	store.PutVendor(&marketplace.Vendor{ID: "v2", CompanyName: "Beta", Status: marketplace.StatusApproved, Categories: kyc})
	store.SetCredits("org-1", 3)
	store.SetPlan("org-1", billing.PlanFree)

	assessRepo := memory.NewAssessmentRepository(store)
	vendors := memory.NewVendorRepository(store)
	svc := Services{
		Analysis:    analysis.NewService(assessRepo, nil, nil),
		Matching:    matching.NewService(assessRepo, vendors, nil),
		Contact:     contact.NewService(vendors, vendors, memory.NewBillingRepository(store), nil, nil),
		Assessments: assessments.NewService(assessRepo, memory.NewBillingRepository(store), nil, nil),
		Reports:     rep,
	}
	h := NewRouter(svc, Options{
		APIKeys: map[string]string{"org-1": "key-1", "org-2": "key-2"},
		Metrics: middleware.NewMetrics(),
		Checks:  map[string]middleware.Checker{"database": middleware.CheckerFunc(func(context.Context) error { return store.Ping() })},
	})
	return &harness{h: h, store: store}
}

func (hs *harness) do(t *testing.T, method, path, body string, headers ...string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer key-1")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestRouter_Analysis(t *testing.T) {
	hs := newHarness(t, nil)

	status, env := hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis", "")
	require.Equal(t, http.StatusOK, status)
	var first analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.False(t, first.Cached)
	assert.Equal(t, 6.0, first.RiskAnalysis[assessment.CategoryKYCAML].Score)

	status, env = hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis", `{"forceRegenerate": false}`)
	require.Equal(t, http.StatusOK, status)
	var second analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.True(t, second.Cached)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown assessment", http.MethodPost, "/v1/org-1/assessments/nope/analysis", "", http.StatusNotFound, string(apperr.CodeAssessmentNotFound)},
		{"other org assessment", http.MethodPost, "/v1/org-1/assessments/asm-other/analysis", "", http.StatusForbidden, string(apperr.CodeAccessDenied)},
		{"no gaps", http.MethodPost, "/v1/org-1/assessments/asm-open/analysis", "", http.StatusConflict, string(apperr.CodeNoGapsFound)},
		{"malformed body", http.MethodPost, "/v1/org-1/assessments/asm-1/analysis", `{"force":`, http.StatusBadRequest, middleware.CodeInvalidInput},
		{"unknown field", http.MethodPost, "/v1/org-1/assessments/asm-1/analysis", `{"bogus": 1}`, http.StatusBadRequest, middleware.CodeInvalidInput},
		{"bad minScore", http.MethodGet, "/v1/org-1/gaps/gap-1/matches?minScore=abc", "", http.StatusBadRequest, string(apperr.CodeInvalidFilter)},
		{"bad limit", http.MethodGet, "/v1/org-1/gaps/gap-1/matches?limit=-2", "", http.StatusBadRequest, string(apperr.CodeInvalidFilter)},
		{"unknown gap", http.MethodGet, "/v1/org-1/gaps/gap-x/matches", "", http.StatusNotFound, string(apperr.CodeGapNotFound)},
		{"compare one", http.MethodPost, "/v1/org-1/vendors/compare", `{"vendorIds": ["v1"]}`, http.StatusConflict, string(apperr.CodeInvalidVendorCount)},
		{"compare dup", http.MethodPost, "/v1/org-1/vendors/compare", `{"vendorIds": ["v1", "v1"]}`, http.StatusBadRequest, string(apperr.CodeDuplicateVendor)},
		{"reports disabled", http.MethodPost, "/v1/org-1/assessments/asm-1/analysis/briefing", "", http.StatusServiceUnavailable, string(apperr.CodeFeatureDisabled)},
		{"wrong org path", http.MethodPost, "/v1/org-2/vendors/compare", `{"vendorIds": ["v1", "v2"]}`, http.StatusForbidden, middleware.CodeAccessDenied},
	}
	hs := newHarness(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := hs.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestRouter_Matches(t *testing.T) {
	hs := newHarness(t, nil)

	status, env := hs.do(t, http.MethodGet, "/v1/org-1/gaps/gap-1/matches?limit=1", "")
	require.Equal(t, http.StatusOK, status)
	var ms []marketplace.Match
	require.NoError(t, json.Unmarshal(env.Data, &ms))
	require.Len(t, ms, 1)
	assert.Equal(t, "v1", ms[0].VendorID)
	assert.Equal(t, 80.0, ms[0].MatchScore)
}

func TestRouter_Compare(t *testing.T) {
	hs := newHarness(t, nil)

	status, env := hs.do(t, http.MethodPost, "/v1/org-1/vendors/compare", `{"vendorIds": ["v2", "v1"]}`)
	require.Equal(t, http.StatusOK, status)
	var res matching.CompareResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Comparison.Matrix, 2)
	assert.Equal(t, "v2", res.Comparison.Matrix[0].VendorID)
}

func TestRouter_Contact(t *testing.T) {
	hs := newHarness(t, nil)
	path := "/v1/org-1/vendors/v1/contact"

	status, env := hs.do(t, http.MethodPost, path, `{"type": "DEMO_REQUEST", "message": "hi"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, middleware.CodeInvalidInput, env.Error.Code)

	status, env = hs.do(t, http.MethodPost, path, `{"type": "RFP", "message": "need a quote"}`, "X-User-ID", "u1")
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, string(apperr.CodeSubscriptionRequired), env.Error.Code)

	status, env = hs.do(t, http.MethodPost, path, `{"type": "DEMO_REQUEST", "message": "  show me  "}`, "X-User-ID", "u1")
	require.Equal(t, http.StatusCreated, status)
	var c marketplace.Contact
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "show me", c.Message)
	assert.Equal(t, "org-1", c.OrganizationID)
	assert.Len(t, hs.store.Contacts(), 1)
}

func TestRouter_Complete(t *testing.T) {
	hs := newHarness(t, nil)
	body := `{"gaps": [{"category": "KYC_AML", "severity": "HIGH", "title": "Stale CDD"}], "risks": []}`

	status, env := hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-open/complete", body, "X-User-ID", "u1")
	require.Equal(t, http.StatusOK, status, string(env.Data))
	var a assessment.Assessment
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, assessment.StatusCompleted, a.Status)

	status, env = hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-open/complete", body, "X-User-ID", "u1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(apperr.CodeAssessmentAlreadyCompleted), env.Error.Code)
}

func TestRouter_Reports(t *testing.T) {
	hs := newHarness(t, stubReports{})
	status, env := hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis/archive", "")
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(env.Data), "org-1/asm-1/analysis-1.json")

	status, env = hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis/briefing", `{"framework": "FATF"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "brief for FATF")

	hs = newHarness(t, stubReports{briefingErr: apperr.ErrAIQuotaExceeded})
	status, env = hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis/briefing", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, string(apperr.CodeAIQuotaExceeded), env.Error.Code)

	hs = newHarness(t, stubReports{archiveErr: apperr.Storage(assert.AnError, "upload archive")})
	status, env = hs.do(t, http.MethodPost, "/v1/org-1/assessments/asm-1/analysis/archive", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", env.Error.Message)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	hs := newHarness(t, nil)

	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	hs.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	hs.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/org-1/gaps/gap-1/matches", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
