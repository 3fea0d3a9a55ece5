package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/httpapi"
	memclock "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/clock"
	memidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/idempotency"
	memscoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/scoutrepo"
	pgidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres/idempotency"
	pgscoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres/scoutrepo"
	postgres_testutil "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres/testutil"
	"github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite"
	sqliteidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite/idempotency"
	sqlitescoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite/scoutrepo"
	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/app/signin"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/metrics"
	idempotencyport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
	scoutrepoport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "sqlite":
		return []backend{backendSQLite}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	const retention = 24 * time.Hour

	var (
		scoutRepo scoutrepoport.Repository
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		scoutRepo = pgscoutrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, clk, retention)
	case backendSQLite:
		ctx := context.Background()
		db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "itest.db"))
		if err != nil {
			t.Fatalf("sqlite.Open err=%v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := sqlite.Migrate(ctx, db); err != nil {
			t.Fatalf("sqlite.Migrate err=%v", err)
		}
		scoutRepo = sqlitescoutrepo.NewRepo(db)
		idemStore = sqliteidempotency.NewStore(db, clk, retention)
	case backendMemory:
		scoutRepo = memscoutrepo.NewRepo()
		idemStore = memidempotency.NewStore(clk, retention)
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	svc := roster.NewService(scoutRepo, clk)
	ctrl := roster.NewController(svc, log, m)
	api := httpapi.NewServer(ctrl, svc, signin.NewDemoService(0), nil, idemStore, clk, log)

	// The API requires X-Debug-Subject (empty default subject) so auth failures are covered.
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		APIAuth: httpapi.NewDevAuthMiddleware(""),
		CSRFKey: []byte("itest-csrf-key-0123456789abcdef!"),
		Metrics: m.Handler(),
		Observe: m,
		Logger:  log,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar err=%v", err)
	}
	client := srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	return &testServer{
		baseURL: srv.URL,
		client:  client,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, subject string, body any, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, []byte, http.Header) {
	t.Helper()
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
