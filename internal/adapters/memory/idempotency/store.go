package idempotency

import (
	"context"
	"sync"
	"time"

	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use.
//
// Records older than the retention window are treated as absent. Put sweeps them out.
type Store struct {
	clk       clockport.Clock
	retention time.Duration

	mu sync.Mutex
	m  map[idempotency.Fingerprint]idempotency.Record
}

// NewStore returns a store that keeps records for retention. A zero retention keeps them forever.
func NewStore(clk clockport.Clock, retention time.Duration) *Store {
	return &Store{
		clk:       clk,
		retention: retention,
		m:         make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if s.expired(rec) {
		delete(s.m, fp)
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clk.Now()
	}
	rec.Body = append([]byte(nil), rec.Body...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.m[fp] = rec
	return nil
}

func (s *Store) sweepLocked() {
	if s.retention <= 0 {
		return
	}
	for fp, rec := range s.m {
		if s.expired(rec) {
			delete(s.m, fp)
		}
	}
}

func (s *Store) expired(rec idempotency.Record) bool {
	if s.retention <= 0 {
		return false
	}
	return s.clk.Now().Sub(rec.CreatedAt) >= s.retention
}
