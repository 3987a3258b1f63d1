package httpserver

import (
	"net/http"
	"strings"

	"github.com/bryanwahyu/complyhub/internal/application/analysis"
	"github.com/bryanwahyu/complyhub/internal/application/assessments"
	"github.com/bryanwahyu/complyhub/internal/application/contact"
	"github.com/bryanwahyu/complyhub/internal/application/matching"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/middleware"
)

// POST /v1/{org}/assessments/{id}/complete
// Body: {"gaps": [...], "risks": [...]}
func (rt *Router) handleComplete(w http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathID(r, "assessment")
	if err != nil {
		return 0, nil, err
	}
	var body struct {
		Gaps  []assessment.Gap  `json:"gaps"`
		Risks []assessment.Risk `json:"risks"`
	}
	if err := decode(w, r, &body); err != nil {
		return 0, nil, err
	}

	a, err := rt.svc.Assessments.Complete(r.Context(), assessments.CompleteCommand{
		AssessmentID: id,
		Requester: assessments.Requester{
			UserID:         strings.TrimSpace(r.Header.Get(userHeader)),
			OrganizationID: orgOf(r),
		},
		Gaps:  body.Gaps,
		Risks: body.Risks,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, a, nil
}

// POST /v1/{org}/assessments/{id}/analysis
// Body (optional): {"forceRegenerate": true, "template": {"name": "...", "framework": "..."}}
func (rt *Router) handleAnalysis(w http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathID(r, "assessment")
	if err != nil {
		return 0, nil, err
	}
	var body struct {
		ForceRegenerate bool                      `json:"forceRegenerate"`
		Template        *analysis.TemplateContext `json:"template"`
	}
	if err := decode(w, r, &body); err != nil {
		return 0, nil, err
	}

	res, err := rt.svc.Analysis.Generate(r.Context(), id, analysis.GenerateOptions{
		ForceRegenerate: body.ForceRegenerate,
		Template:        body.Template,
		OrganizationID:  orgOf(r),
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, res, nil
}

// POST /v1/{org}/assessments/{id}/analysis/archive
func (rt *Router) handleArchive(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	if rt.svc.Reports == nil {
		return 0, nil, apperr.ErrFeatureDisabled
	}
	id, err := pathID(r, "assessment")
	if err != nil {
		return 0, nil, err
	}
	out, err := rt.svc.Reports.Archive(r.Context(), id, orgOf(r))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, out, nil
}

// POST /v1/{org}/assessments/{id}/analysis/briefing
// Body (optional): {"framework": "..."}
func (rt *Router) handleBriefing(w http.ResponseWriter, r *http.Request) (int, any, error) {
	if rt.svc.Reports == nil {
		return 0, nil, apperr.ErrFeatureDisabled
	}
	id, err := pathID(r, "assessment")
	if err != nil {
		return 0, nil, err
	}
	var body struct {
		Framework string `json:"framework"`
	}
	if err := decode(w, r, &body); err != nil {
		return 0, nil, err
	}
	out, err := rt.svc.Reports.Briefing(r.Context(), id, orgOf(r), middleware.SanitizeString(body.Framework))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, out, nil
}

// GET /v1/{org}/gaps/{id}/matches?minScore=&limit=
func (rt *Router) handleMatches(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathID(r, "gap")
	if err != nil {
		return 0, nil, err
	}
	q := r.URL.Query()
	minScore, err := middleware.ParseMinScore(q.Get("minScore"))
	if err != nil {
		return 0, nil, apperr.ErrInvalidFilter.Withf("%s", err.Error())
	}
	limit, err := middleware.ParseLimit(q.Get("limit"))
	if err != nil {
		return 0, nil, apperr.ErrInvalidFilter.Withf("%s", err.Error())
	}

	matches, err := rt.svc.Matching.MatchVendorsForGap(r.Context(), id, matching.Filters{
		MinScore:       minScore,
		Limit:          limit,
		OrganizationID: orgOf(r),
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, matches, nil
}

// POST /v1/{org}/vendors/compare
// Body: {"vendorIds": ["...", "..."]}
func (rt *Router) handleCompare(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var body struct {
		VendorIDs []string `json:"vendorIds"`
	}
	if err := decode(w, r, &body); err != nil {
		return 0, nil, err
	}
	for _, id := range body.VendorIDs {
		if err := middleware.ValidateID("vendor", id); err != nil {
			return 0, nil, invalid(err.Error())
		}
	}
	res, err := rt.svc.Matching.CompareVendors(r.Context(), body.VendorIDs)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, res, nil
}

// POST /v1/{org}/vendors/{id}/contact
// Body: {"type": "DEMO_REQUEST", "message": "..."}
func (rt *Router) handleContact(w http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathID(r, "vendor")
	if err != nil {
		return 0, nil, err
	}
	user := strings.TrimSpace(r.Header.Get(userHeader))
	if user == "" {
		return 0, nil, invalid(userHeader + " header is required")
	}
	var req contact.Request
	if err := decode(w, r, &req); err != nil {
		return 0, nil, err
	}
	req.Message = middleware.SanitizeString(req.Message)

	c, err := rt.svc.Contact.ContactVendor(r.Context(), id, req, contact.Requester{
		UserID:         user,
		OrganizationID: orgOf(r),
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, c, nil
}
