package contracttest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	memclock "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/clock"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	idempotencyport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
	scoutrepoport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

type CleanupFunc = func()

type ScoutRepoFactory func(t *testing.T) (scoutrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T, clk clockport.Clock, retention time.Duration) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	clk := memclock.NewManualClock(time.Unix(1000, 0).UTC())
	store, cleanup := newStore(t, clk, time.Hour)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Subject:  domain.SubjectID("sub-1"),
		Method:   "POST",
		Route:    "/api/v1/scouts",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(missing): ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   clk.Now(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "other"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other body hash): ok=%v err=%v", ok, err)
	}

	// Retention.
	clk.Advance(time.Hour)
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(expired): ok=%v err=%v, want ok=false", ok, err)
	}
}

func RunScoutRepo(t *testing.T, newRepo ScoutRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	troop := "Troop 204"
	age := 13
	aID := domain.ScoutID(uuid.NewString())
	if err := repo.Create(ctx, scoutrepoport.Scout{
		ID:        aID,
		Name:      "Alex Rivera",
		Troop:     &troop,
		Age:       &age,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Alex Rivera" || got.Troop == nil || *got.Troop != troop || got.Age == nil || *got.Age != 13 {
		t.Fatalf("unexpected scout: %+v", got)
	}
	// Optional columns round-trip as NULL, never as empty strings.
	if got.Email != nil {
		t.Fatalf("email=%q, want nil", *got.Email)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at=%v, want %v", got.CreatedAt, now)
	}

	// ID uniqueness.
	if err := repo.Create(ctx, scoutrepoport.Scout{ID: aID, Name: "Dup", CreatedAt: now}); !errors.Is(err, scoutrepoport.ErrAlreadyExists) {
		t.Fatalf("Create dup err=%v, want ErrAlreadyExists", err)
	}

	// Deterministic list ordering by name (case-insensitive).
	bID := domain.ScoutID(uuid.NewString())
	if err := repo.Create(ctx, scoutrepoport.Scout{ID: bID, Name: "bailey", CreatedAt: now}); err != nil {
		t.Fatalf("Create b: %v", err)
	}
	cID := domain.ScoutID(uuid.NewString())
	if err := repo.Create(ctx, scoutrepoport.Scout{ID: cID, Name: "Casey", CreatedAt: now}); err != nil {
		t.Fatalf("Create c: %v", err)
	}
	ss, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ss) != 3 || ss[0].ID != aID || ss[1].ID != bID || ss[2].ID != cID {
		t.Fatalf("unexpected ordering: %#v", ss)
	}

	// Update touches only the target and clears fields set to nil.
	email := "bailey@example.com"
	if err := repo.Update(ctx, scoutrepoport.Scout{ID: bID, Name: "Bailey Q", Email: &email, CreatedAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Update b: %v", err)
	}
	if err := repo.Update(ctx, scoutrepoport.Scout{ID: aID, Name: "Alex Rivera", CreatedAt: now}); err != nil {
		t.Fatalf("Update a: %v", err)
	}
	b, err := repo.GetByID(ctx, bID)
	if err != nil {
		t.Fatalf("GetByID b: %v", err)
	}
	if b.Name != "Bailey Q" || b.Email == nil || *b.Email != email || !b.CreatedAt.Equal(now) {
		t.Fatalf("unexpected updated scout: %+v", b)
	}
	a, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID a: %v", err)
	}
	if a.Troop != nil || a.Age != nil {
		t.Fatalf("expected cleared troop/age: %+v", a)
	}
	c, err := repo.GetByID(ctx, cID)
	if err != nil {
		t.Fatalf("GetByID c: %v", err)
	}
	if c.Name != "Casey" {
		t.Fatalf("unrelated scout changed: %+v", c)
	}

	missing := domain.ScoutID(uuid.NewString())
	if err := repo.Update(ctx, scoutrepoport.Scout{ID: missing, Name: "Ghost"}); !errors.Is(err, scoutrepoport.ErrNotFound) {
		t.Fatalf("Update missing err=%v, want ErrNotFound", err)
	}

	// Delete.
	if err := repo.Delete(ctx, cID); err != nil {
		t.Fatalf("Delete c: %v", err)
	}
	if err := repo.Delete(ctx, cID); !errors.Is(err, scoutrepoport.ErrNotFound) {
		t.Fatalf("Delete c again err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, cID); !errors.Is(err, scoutrepoport.ErrNotFound) {
		t.Fatalf("GetByID deleted err=%v, want ErrNotFound", err)
	}
	ss, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(ss) != 2 {
		t.Fatalf("List after delete len=%d, want 2", len(ss))
	}

	// Ordering is byte-wise on the lowercased name in every backend ("al zed" < "alex rivera"),
	// and the widest accepted age round-trips.
	maxAge := math.MaxInt32
	zID := domain.ScoutID(uuid.NewString())
	if err := repo.Create(ctx, scoutrepoport.Scout{ID: zID, Name: "Al Zed", Age: &maxAge, CreatedAt: now}); err != nil {
		t.Fatalf("Create z: %v", err)
	}
	z, err := repo.GetByID(ctx, zID)
	if err != nil {
		t.Fatalf("GetByID z: %v", err)
	}
	if z.Age == nil || *z.Age != math.MaxInt32 {
		t.Fatalf("age=%v, want %d", z.Age, math.MaxInt32)
	}
	ss, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after z: %v", err)
	}
	if len(ss) != 3 || ss[0].ID != zID || ss[1].ID != aID || ss[2].ID != bID {
		t.Fatalf("unexpected ordering: %#v", ss)
	}
}
