package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/app/signin"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/session"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
)

const appTitle = "Scout Merit Badge Tracker"

// Server holds the HTML and JSON handlers.
type Server struct {
	roster   *roster.Controller
	scouts   *roster.Service
	signIn   *signin.Service
	sessions *session.Manager
	idem     idempotency.Store
	clock    clockport.Clock
	log      *slog.Logger
}

// NewServer wires the handlers. sessions is nil in demo mode; idem may be nil to
// disable Idempotency-Key handling.
func NewServer(ctrl *roster.Controller, scouts *roster.Service, signIn *signin.Service, sessions *session.Manager, idem idempotency.Store, clk clockport.Clock, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		roster:   ctrl,
		scouts:   scouts,
		signIn:   signIn,
		sessions: sessions,
		idem:     idem,
		clock:    clk,
		log:      log,
	}
}

func (s *Server) landingView(r *http.Request, f *flash) landingView {
	return landingView{
		Layout:   s.layout(r, appTitle),
		DemoMode: !s.signIn.IssuesSessions(),
		Flash:    f,
	}
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "landing_page", s.landingView(r, nil))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	res, err := s.signIn.SignIn(r.Context(), r.PostFormValue("id_token"))
	if err != nil {
		status, text := http.StatusBadGateway, "Sign-in failed. Please try again."
		switch {
		case errors.Is(err, context.Canceled):
			s.log.DebugContext(r.Context(), "sign-in abandoned by client")
			return
		case errors.Is(err, signin.ErrMissingToken):
			status, text = http.StatusUnprocessableEntity, "An identity token is required."
		case errors.Is(err, signin.ErrInvalidToken):
			status, text = http.StatusUnauthorized, "Sign-in failed: the identity token was rejected."
		default:
			s.log.ErrorContext(r.Context(), "sign-in failed", "err", err)
		}
		s.renderSignInResult(w, r, status, &flash{Kind: "danger", Text: text})
		return
	}

	if res.SessionToken == "" {
		s.renderSignInResult(w, r, http.StatusOK, &flash{Kind: "info", Text: res.Notice})
		return
	}
	http.SetCookie(w, s.sessions.Cookie(res.SessionToken, res.ExpiresAt))
	s.log.InfoContext(r.Context(), "signed in", "subject", string(res.Subject))
	redirect(w, r, "/scouts")
}

func (s *Server) renderSignInResult(w http.ResponseWriter, r *http.Request, status int, f *flash) {
	name := "landing_page"
	if isHTMX(r) {
		name = "signin_result"
	}
	renderTemplate(w, r, status, name, s.landingView(r, f))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if s.sessions != nil {
		http.SetCookie(w, s.sessions.ClearCookie())
	}
	redirect(w, r, "/")
}

// redirect is a 303 for plain requests and HX-Redirect for htmx.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
