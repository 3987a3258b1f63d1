// Package httpserver mounts the HTTP surface over the application services.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/complyhub/internal/application/analysis"
	"github.com/bryanwahyu/complyhub/internal/application/assessments"
	"github.com/bryanwahyu/complyhub/internal/application/contact"
	"github.com/bryanwahyu/complyhub/internal/application/matching"
	"github.com/bryanwahyu/complyhub/internal/application/reports"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/logging"
	"github.com/bryanwahyu/complyhub/internal/middleware"
)

type Analyzer interface {
	Generate(ctx context.Context, id string, opts analysis.GenerateOptions) (*analysis.Result, error)
}

type Matcher interface {
	MatchVendorsForGap(ctx context.Context, gapID string, f matching.Filters) ([]marketplace.Match, error)
	CompareVendors(ctx context.Context, ids []string) (*matching.CompareResult, error)
}

type Contacter interface {
	ContactVendor(ctx context.Context, vendorID string, req contact.Request, who contact.Requester) (*marketplace.Contact, error)
}

type Completer interface {
	Complete(ctx context.Context, cmd assessments.CompleteCommand) (*assessment.Assessment, error)
}

type Reporter interface {
	Archive(ctx context.Context, assessmentID, orgID string) (*reports.Archived, error)
	Briefing(ctx context.Context, assessmentID, orgID, framework string) (*reports.Briefing, error)
}

// Services are the handlers' dependencies. Reports may be nil.
type Services struct {
	Analysis    Analyzer
	Matching    Matcher
	Contact     Contacter
	Assessments Completer
	Reports     Reporter
}

// Options configures the ambient middleware.
type Options struct {
	APIKeys        map[string]string
	AllowedOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.RateLimiter
	// Metrics is optional; nil disables /metrics.
	Metrics *middleware.Metrics
	Checks  map[string]middleware.Checker
	Log     logging.Logger
}

const (
	userHeader   = "X-User-ID"
	maxBodyBytes = 1 << 20
)

type Router struct {
	svc Services
	log logging.Logger
}

func NewRouter(svc Services, opts Options) http.Handler {
	rt := &Router{svc: svc, log: logging.OrNop(opts.Log).Named("router")}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", userHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checks))
	mux.Get("/readyz", middleware.ReadinessHandler)
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Group(func(g chi.Router) {
		g.Use(middleware.APIKeyAuth(opts.APIKeys))
		if opts.Limiter != nil {
			g.Use(middleware.RateLimit(opts.Limiter))
		}
		g.Route("/v1/{org}", func(v chi.Router) {
			v.Use(middleware.RequireOrganization("org"))

			v.Post("/assessments/{id}/complete", rt.wrap(rt.handleComplete))
			v.Post("/assessments/{id}/analysis", rt.wrap(rt.handleAnalysis))
			v.Post("/assessments/{id}/analysis/archive", rt.wrap(rt.handleArchive))
			v.Post("/assessments/{id}/analysis/briefing", rt.wrap(rt.handleBriefing))
			v.Get("/gaps/{id}/matches", rt.wrap(rt.handleMatches))
			v.Post("/vendors/compare", rt.wrap(rt.handleCompare))
			v.Post("/vendors/{id}/contact", rt.wrap(rt.handleContact))
		})
	})

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.Fail(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) (int, any, error)

// wrap renders the handler's result in the envelope. Typed errors keep their code;
// anything else is reported as an internal error without its message.
func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, data, err := h(w, r)
		if err == nil {
			middleware.JSON(w, status, data)
			return
		}

		kind := apperr.KindOf(err)
		code := apperr.CodeOf(err)
		msg := apperr.MessageOf(err)
		switch kind {
		case apperr.KindInternal, apperr.KindStorage:
			rt.log.Error("request failed",
				logging.String("path", r.URL.Path),
				logging.String("code", string(code)),
				logging.Err(err))
			msg = "internal error"
		}
		middleware.Fail(w, apperr.HTTPStatus(kind), string(code), msg)
	}
}

func invalid(msg string) error {
	return apperr.New(apperr.KindValidation, apperr.Code(middleware.CodeInvalidInput), msg)
}

// decode reads an optional JSON body. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return invalid("malformed request body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request, kind string) (string, error) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(kind, id); err != nil {
		return "", invalid(err.Error())
	}
	return id, nil
}

func orgOf(r *http.Request) string {
	return middleware.OrganizationFromContext(r.Context())
}
