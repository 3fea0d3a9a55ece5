package idempotency

import (
	"testing"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/contracttest"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	idempotencyport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
)

func TestContract_IdempotencyStore(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T, clk clockport.Clock, retention time.Duration) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(clk, retention), nil
	})
}
