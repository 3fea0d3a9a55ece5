package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// RouterOptions configures NewRouter. Nil auth middlewares leave the group open.
type RouterOptions struct {
	// PageAuth guards the roster pages; APIAuth guards /api/v1.
	PageAuth func(http.Handler) http.Handler
	APIAuth  func(http.Handler) http.Handler

	// CSRFKey must be 32 bytes.
	CSRFKey       []byte
	SecureCookies bool

	Metrics http.Handler
	Observe RequestObserver
	Logger  *slog.Logger
}

// NewRouter constructs the HTTP router: server-rendered pages behind CSRF protection,
// the JSON API under /api/v1, and the infra endpoints.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log, opts.Observe))
	r.Use(middleware.Recoverer)

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(markPlaintext(opts.SecureCookies))
		r.Use(csrf.Protect(opts.CSRFKey,
			csrf.Secure(opts.SecureCookies),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
		))

		r.Get("/", s.handleLanding)
		r.Post("/signin", s.handleSignIn)
		r.Post("/signout", s.handleSignOut)

		r.Group(func(r chi.Router) {
			if opts.PageAuth != nil {
				r.Use(opts.PageAuth)
			}
			r.Get("/scouts", s.handleRosterShell)
			r.Post("/scouts", s.handleSubmitAdd)
			r.Get("/scouts/list", s.handleRosterList)
			r.Get("/scouts/new", s.handleOpenAdd)
			r.Get("/scouts/{scoutID}/edit", s.handleOpenEdit)
			r.Post("/scouts/{scoutID}", s.handleSubmitEdit)
			r.Get("/scouts/{scoutID}/delete", s.handleOpenDelete)
			r.Post("/scouts/{scoutID}/delete", s.handleConfirmDelete)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if opts.APIAuth != nil {
			r.Use(opts.APIAuth)
		}
		r.Get("/scouts", s.handleAPIListScouts)
		r.Post("/scouts", s.handleAPICreateScout)
		r.Get("/scouts/{scoutID}", s.handleAPIGetScout)
		r.Patch("/scouts/{scoutID}", s.handleAPIPatchScout)
		r.Delete("/scouts/{scoutID}", s.handleAPIDeleteScout)
	})

	return r
}

// markPlaintext tells gorilla/csrf that non-TLS requests are plain HTTP, so the
// strict Referer check only applies to HTTPS.
func markPlaintext(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "csrf check failed", "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
}
