package httpapi

import (
	"net/http"
	"strings"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/session"
)

// SessionValidator checks a session token and returns its subject.
type SessionValidator interface {
	Validate(token string) (domain.SubjectID, error)
}

// NewSessionAuthMiddleware requires a valid session, read from the session cookie or
// from Authorization: Bearer <session token>.
//
// On success, it stores the session subject in request context. Otherwise it calls
// onUnauthorized.
func NewSessionAuthMiddleware(sessions SessionValidator, onUnauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sessionToken(r)
			if raw == "" {
				onUnauthorized(w, r)
				return
			}
			sub, err := sessions.Validate(raw)
			if err != nil {
				onUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, prefix))
}

// RedirectToLanding sends unauthenticated page requests back to the landing page.
func RedirectToLanding(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// APIUnauthorized writes the 401 error envelope.
func APIUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, r, http.StatusUnauthorized, codeUnauthorized, "missing or invalid session", nil)
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit subject via X-Debug-Subject and stores it in request context.
// If the header is absent, it falls back to defaultSubject (if provided).
func NewDevAuthMiddleware(defaultSubject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject"))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
			}
			if sub == "" {
				writeAPIError(w, r, http.StatusUnauthorized, codeUnauthorized, "missing subject (set X-Debug-Subject)", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), domain.SubjectID(sub))))
		})
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
