package signin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

type fakeVerifier struct {
	sub domain.SubjectID
	err error
}

func (f fakeVerifier) Verify(_ context.Context, _ string) (domain.SubjectID, error) {
	return f.sub, f.err
}

type fakeIssuer struct{ issued []domain.SubjectID }

func (f *fakeIssuer) Issue(sub domain.SubjectID) (string, time.Time, error) {
	f.issued = append(f.issued, sub)
	return "session-for-" + string(sub), time.Unix(2000, 0).UTC(), nil
}

func TestDemoSignIn_WaitsThenReturnsNotice(t *testing.T) {
	t.Parallel()

	svc := NewDemoService(2 * time.Second)
	var waited time.Duration
	svc.SetWaitForTest(func(_ context.Context, d time.Duration) error {
		waited = d
		return nil
	})

	res, err := svc.SignIn(context.Background(), "")
	if err != nil {
		t.Fatalf("SignIn err=%v", err)
	}
	if waited != 2*time.Second {
		t.Fatalf("waited=%v, want 2s", waited)
	}
	if res.Notice != DemoNotice || res.SessionToken != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if svc.IssuesSessions() {
		t.Fatalf("demo mode must not issue sessions")
	}
}

func TestDemoSignIn_CancelledContext(t *testing.T) {
	t.Parallel()

	svc := NewDemoService(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.SignIn(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("SignIn err=%v, want context.Canceled", err)
	}
}

func TestJWTSignIn(t *testing.T) {
	t.Parallel()

	issuer := &fakeIssuer{}
	svc := NewJWTService(fakeVerifier{sub: "google|42"}, issuer)

	if _, err := svc.SignIn(context.Background(), "  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("SignIn(blank) err=%v, want ErrMissingToken", err)
	}
	res, err := svc.SignIn(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("SignIn err=%v", err)
	}
	if res.Subject != "google|42" || res.SessionToken != "session-for-google|42" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(issuer.issued) != 1 {
		t.Fatalf("issued=%v", issuer.issued)
	}

	bad := NewJWTService(fakeVerifier{err: errors.New("bad sig")}, issuer)
	if _, err := bad.SignIn(context.Background(), "forged"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("SignIn(forged) err=%v, want ErrInvalidToken", err)
	}
}
