package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const orgKey contextKey = "organization"

const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeAccessDenied = "ACCESS_DENIED"
)

// APIKeyAuth resolves the organization from the Authorization header. keys maps
// organization id to its API key.
func APIKeyAuth(keys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				Fail(w, http.StatusUnauthorized, CodeUnauthorized, "missing Authorization header")
				return
			}
			// "Bearer <key>" and a bare "<key>" are both accepted
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				Fail(w, http.StatusUnauthorized, CodeUnauthorized, "invalid Authorization header format")
				return
			}

			org, ok := lookupKey(keys, apiKey)
			if !ok {
				Fail(w, http.StatusUnauthorized, CodeUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOrganization(r.Context(), org)))
		})
	}
}

// lookupKey compares against every key in constant time.
func lookupKey(keys map[string]string, apiKey string) (string, bool) {
	var found string
	for org, key := range keys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			found = org
		}
	}
	return found, found != ""
}

func WithOrganization(ctx context.Context, org string) context.Context {
	return context.WithValue(ctx, orgKey, org)
}

// OrganizationFromContext returns the authenticated organization, or "".
func OrganizationFromContext(ctx context.Context) string {
	if org, ok := ctx.Value(orgKey).(string); ok {
		return org
	}
	return ""
}

// RequireOrganization rejects requests whose {param} URL segment differs from the
// authenticated organization.
func RequireOrganization(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			urlOrg := chi.URLParam(r, param)
			if err := ValidateOrgID(urlOrg); err != nil {
				Fail(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
				return
			}
			if urlOrg != OrganizationFromContext(r.Context()) {
				Fail(w, http.StatusForbidden, CodeAccessDenied, "organization does not match credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
