// Package session issues and validates the signed session cookie used in jwt auth mode.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
)

// CookieName is the session cookie.
const CookieName = "badge_session"

const issuer = "badge-tracker"

var (
	ErrInvalidToken = errors.New("invalid or expired session")
	ErrMissingToken = errors.New("session required")
)

// Claims are the session token claims. Subject carries the authenticated subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager signs HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clk    clockport.Clock
	secure bool
}

func NewManager(secret string, ttl time.Duration, clk clockport.Clock, secureCookies bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		clk:    clk,
		secure: secureCookies,
	}
}

// Issue returns a signed token for subject and its expiry.
func (m *Manager) Issue(subject domain.SubjectID) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	now := m.clk.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   string(subject),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Validate parses a session token and returns its subject.
func (m *Manager) Validate(token string) (domain.SubjectID, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clk.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return domain.SubjectID(claims.Subject), nil
}

// FromRequest validates the session cookie on r.
func (m *Manager) FromRequest(r *http.Request) (domain.SubjectID, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrMissingToken
	}
	return m.Validate(c.Value)
}

// Cookie wraps token in the session cookie.
func (m *Manager) Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
