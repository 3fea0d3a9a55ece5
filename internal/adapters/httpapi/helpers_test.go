package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/clock"
	memidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/idempotency"
	memscoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/scoutrepo"
	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/app/signin"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/session"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

const testSessionSecret = "test-session-secret-0123456789abcdef"

type testEnv struct {
	h        http.Handler
	repo     scoutrepo.Repository
	clk      *clock.ManualClock
	sessions *session.Manager
}

type envOptions struct {
	// jwt switches to session auth with verifier as the identity token check.
	jwt      bool
	verifier signin.TokenVerifier
	repo     scoutrepo.Repository
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	clk := clock.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := opts.repo
	if repo == nil {
		repo = memscoutrepo.NewRepo()
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := roster.NewService(repo, clk)
	ctrl := roster.NewController(svc, log, nil)

	var (
		signIn   *signin.Service
		sessions *session.Manager
		ro       = RouterOptions{CSRFKey: testCSRFKey, Logger: log}
	)
	if opts.jwt {
		sessions = session.NewManager(testSessionSecret, time.Hour, clk, false)
		signIn = signin.NewJWTService(opts.verifier, sessions)
		ro.PageAuth = NewSessionAuthMiddleware(sessions, RedirectToLanding)
		ro.APIAuth = NewSessionAuthMiddleware(sessions, APIUnauthorized)
	} else {
		signIn = signin.NewDemoService(0)
		ro.APIAuth = NewDevAuthMiddleware("demo|local")
	}

	srv := NewServer(ctrl, svc, signIn, sessions, memidempotency.NewStore(clk, time.Hour), clk, log)
	return &testEnv{
		h:        NewRouter(srv, ro),
		repo:     repo,
		clk:      clk,
		sessions: sessions,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

var csrfFieldRE = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

// csrfPair fetches the landing page and returns the CSRF cookie and a form token.
func (e *testEnv) csrfPair(t *testing.T) (*http.Cookie, string) {
	t.Helper()

	rec := e.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status=%d", rec.Code)
	}
	m := csrfFieldRE.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatalf("csrf field missing from landing page")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_gorilla_csrf" {
			return c, m[1]
		}
	}
	t.Fatalf("csrf cookie missing")
	return nil, ""
}

// postForm sends a CSRF-valid form post. Extra cookies (e.g. the session) are attached.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values, htmx bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	csrfCookie, token := e.csrfPair(t)
	if form == nil {
		form = url.Values{}
	}
	form.Set("gorilla.csrf.Token", token)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	req.AddCookie(csrfCookie)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

func (e *testEnv) get(path string, htmx bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

func (e *testEnv) seed(t *testing.T, scouts ...scoutrepo.Scout) {
	t.Helper()
	for _, s := range scouts {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = e.clk.Now()
		}
		if err := e.repo.Create(context.Background(), s); err != nil {
			t.Fatalf("seed Create(%s) err=%v", s.ID, err)
		}
	}
}

type stubVerifier struct {
	tokens map[string]domain.SubjectID
}

func (v stubVerifier) Verify(_ context.Context, token string) (domain.SubjectID, error) {
	sub, ok := v.tokens[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return sub, nil
}

// failingRepo fails every call with err.
type failingRepo struct {
	scoutrepo.Repository
	err error
}

func (r failingRepo) Create(context.Context, scoutrepo.Scout) error { return r.err }
func (r failingRepo) Update(context.Context, scoutrepo.Scout) error { return r.err }
func (r failingRepo) Delete(context.Context, domain.ScoutID) error  { return r.err }
func (r failingRepo) GetByID(context.Context, domain.ScoutID) (scoutrepo.Scout, error) {
	return scoutrepo.Scout{}, r.err
}
func (r failingRepo) List(context.Context) ([]scoutrepo.Scout, error) { return nil, r.err }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
