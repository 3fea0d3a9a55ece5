package scoutrepo

import (
	"context"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

// Scout is the persistence shape used by the scout repository.
// It's used as an internal record, not an HTTP DTO.
type Scout struct {
	ID   domain.ScoutID
	Name string
	// Troop, Age and Email are nullable columns; nil means NULL.
	Troop *string
	Age   *int
	Email *string

	CreatedAt time.Time
}

// Repository provides access to persisted scouts.
//
// Result ordering expectations:
// - List returns scouts ordered by Name ascending (case-insensitive), ties broken by ID.
type Repository interface {
	Create(ctx context.Context, s Scout) error
	// Update replaces the mutable fields (Name, Troop, Age, Email) of the scout with s.ID.
	// CreatedAt is never changed.
	Update(ctx context.Context, s Scout) error
	Delete(ctx context.Context, id domain.ScoutID) error

	GetByID(ctx context.Context, id domain.ScoutID) (Scout, error)
	List(ctx context.Context) ([]Scout, error)
}
