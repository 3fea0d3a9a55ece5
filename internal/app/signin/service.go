// Package signin implements the landing page sign-in: a timed stand-in in demo mode,
// and an ID token exchange for a session in jwt mode.
package signin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

// DemoNotice is shown after the demo sign-in delay.
const DemoNotice = "Google Auth integration will be set up with the hosted backend! This is just a demo design."

var (
	ErrMissingToken = errors.New("id token required")
	ErrInvalidToken = errors.New("id token rejected")
)

// TokenVerifier checks an identity provider token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.SubjectID, error)
}

// SessionIssuer mints a session token for an authenticated subject.
type SessionIssuer interface {
	Issue(subject domain.SubjectID) (string, time.Time, error)
}

// Result is the outcome of a sign-in. Demo results carry only Notice.
type Result struct {
	Notice       string
	Subject      domain.SubjectID
	SessionToken string
	ExpiresAt    time.Time
}

// Service performs sign-in. Exactly one of the demo or jwt configurations is active.
type Service struct {
	delay    time.Duration
	wait     func(ctx context.Context, d time.Duration) error
	verifier TokenVerifier
	sessions SessionIssuer
}

// NewDemoService waits delay and returns DemoNotice without issuing a session.
func NewDemoService(delay time.Duration) *Service {
	return &Service{delay: delay, wait: sleepCtx}
}

// NewJWTService exchanges a verified ID token for a session token.
func NewJWTService(verifier TokenVerifier, sessions SessionIssuer) *Service {
	return &Service{verifier: verifier, sessions: sessions, wait: sleepCtx}
}

// SetWaitForTest replaces the context-aware sleep.
func (s *Service) SetWaitForTest(fn func(ctx context.Context, d time.Duration) error) {
	s.wait = fn
}

// IssuesSessions reports whether SignIn produces a session token.
func (s *Service) IssuesSessions() bool { return s.verifier != nil }

func (s *Service) SignIn(ctx context.Context, idToken string) (Result, error) {
	if s.verifier == nil {
		if err := s.wait(ctx, s.delay); err != nil {
			return Result{}, err
		}
		return Result{Notice: DemoNotice}, nil
	}

	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Result{}, ErrMissingToken
	}
	sub, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return Result{}, ErrInvalidToken
	}
	tok, exp, err := s.sessions.Issue(sub)
	if err != nil {
		return Result{}, err
	}
	return Result{Subject: sub, SessionToken: tok, ExpiresAt: exp}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
