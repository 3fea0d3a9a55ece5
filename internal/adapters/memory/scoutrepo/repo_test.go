package scoutrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	now := time.Unix(100, 0).UTC()

	s := scoutrepo.Scout{
		ID:        domain.ScoutID("s1"),
		Name:      "Alex Rivera",
		Troop:     strPtr("Troop 204"),
		Age:       intPtr(13),
		CreatedAt: now,
	}

	if err := r.Create(context.Background(), s); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	got, err := r.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("GetByID() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepo_CreateRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	s1 := scoutrepo.Scout{ID: "s1", Name: "A"}
	s2 := scoutrepo.Scout{ID: "s1", Name: "B"}

	if err := r.Create(context.Background(), s1); err != nil {
		t.Fatalf("Create(s1) err=%v", err)
	}
	if err := r.Create(context.Background(), s2); err != scoutrepo.ErrAlreadyExists {
		t.Fatalf("Create(s2) err=%v, want %v", err, scoutrepo.ErrAlreadyExists)
	}
}

func TestRepo_ReturnedRecordsAreCopies(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	troop := "Troop 1"
	if err := r.Create(context.Background(), scoutrepo.Scout{ID: "s1", Name: "A", Troop: &troop}); err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	troop = "mutated"

	got, err := r.GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	*got.Troop = "mutated again"

	again, _ := r.GetByID(context.Background(), "s1")
	if *again.Troop != "Troop 1" {
		t.Fatalf("stored troop=%q, want %q", *again.Troop, "Troop 1")
	}
}

func TestRepo_UpdateKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	created := time.Unix(100, 0).UTC()

	s := scoutrepo.Scout{ID: "s1", Name: "Alex", CreatedAt: created}
	if err := r.Update(context.Background(), s); err != scoutrepo.ErrNotFound {
		t.Fatalf("Update(nonexistent) err=%v, want %v", err, scoutrepo.ErrNotFound)
	}
	if err := r.Create(context.Background(), s); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	updated := scoutrepo.Scout{ID: "s1", Name: "Alex R", Email: strPtr("alex@example.com"), CreatedAt: time.Unix(999, 0).UTC()}
	if err := r.Update(context.Background(), updated); err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	got, err := r.GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if got.Name != "Alex R" || got.Email == nil || *got.Email != "alex@example.com" {
		t.Fatalf("GetByID() after update=%+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt=%v, want %v", got.CreatedAt, created)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	_ = r.Create(context.Background(), scoutrepo.Scout{ID: "s1", Name: "A"})

	if err := r.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("Delete() err=%v", err)
	}
	if err := r.Delete(context.Background(), "s1"); err != scoutrepo.ErrNotFound {
		t.Fatalf("Delete(again) err=%v, want %v", err, scoutrepo.ErrNotFound)
	}
	if _, err := r.GetByID(context.Background(), "s1"); err != scoutrepo.ErrNotFound {
		t.Fatalf("GetByID() err=%v, want %v", err, scoutrepo.ErrNotFound)
	}
}

func TestRepo_ListOrdersByName(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	_ = r.Create(context.Background(), scoutrepo.Scout{ID: "s2", Name: "bob"})
	_ = r.Create(context.Background(), scoutrepo.Scout{ID: "s1", Name: "Alice"})
	_ = r.Create(context.Background(), scoutrepo.Scout{ID: "s3", Name: "Bob"})

	got, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	ids := make([]domain.ScoutID, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	// Case-insensitive sort; tie breaks by ID.
	want := []domain.ScoutID{"s1", "s2", "s3"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("List() order mismatch (-want +got):\n%s", diff)
	}
}
