package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/jwks_testutil"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/config"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/logging"
)

// Tiny dev-only ID token issuer + JWKS server.
//
// This is NOT a full OIDC provider. It exists to exercise AUTH_MODE=jwt locally:
// point JWT_JWKS_URL at /.well-known/jwks.json and paste a token from /token
// into the landing page.

type devConfig struct {
	Port     int           `env:"PORT" envDefault:"5556"`
	Issuer   string        `env:"ISSUER" envDefault:"http://localhost:5556"`
	Audience string        `env:"AUDIENCE" envDefault:"badge-tracker"`
	Kid      string        `env:"KID" envDefault:"dev-kid-1"`
	TTL      time.Duration `env:"TTL" envDefault:"30m"`
}

func main() {
	log := logging.Setup(slog.LevelInfo)

	var cfg devConfig
	if err := config.ParseEnv(&cfg, nil); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	kp, err := jwks_testutil.GenerateRSAKeypair(cfg.Kid)
	if err != nil {
		log.Error("generate key", "err", err)
		os.Exit(1)
	}
	jwksJSON := jwks_testutil.JWKSJSON([]jwks_testutil.Keypair{kp})

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Common JWKS path used by many providers.
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(jwksJSON)
	})

	// Mint a token:
	//   GET /token?sub=leader|alice
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		})
		tok.Header["kid"] = kp.Kid
		signed, err := tok.SignedString(kp.Private)
		if err != nil {
			log.ErrorContext(r.Context(), "mint token", "err", err)
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": signed,
			"sub":   sub,
			"iss":   cfg.Issuer,
			"aud":   cfg.Audience,
			"exp":   now.Add(cfg.TTL).Unix(),
		})
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("devjwt listening", "addr", srv.Addr, "iss", cfg.Issuer, "aud", cfg.Audience, "kid", cfg.Kid, "ttl", cfg.TTL)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("listen", "err", err)
		os.Exit(1)
	}
}
