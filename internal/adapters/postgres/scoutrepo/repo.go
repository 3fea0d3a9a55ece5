package scoutrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

// Repo is a Postgres implementation of scoutrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectScout = `
	SELECT id, name, troop, age, email, created_at
	FROM scouts
`

func (r *Repo) Create(ctx context.Context, s scoutrepo.Scout) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(s.ID))
	if err != nil {
		return fmt.Errorf("invalid scout id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO scouts (id, name, troop, age, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		id,
		s.Name,
		s.Troop,
		s.Age,
		s.Email,
		s.CreatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return scoutrepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert scout: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, s scoutrepo.Scout) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(s.ID))
	if err != nil {
		return scoutrepo.ErrNotFound
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE scouts
		SET name = $2,
		    troop = $3,
		    age = $4,
		    email = $5
		WHERE id = $1
	`,
		id,
		s.Name,
		s.Troop,
		s.Age,
		s.Email,
	)
	if err != nil {
		return fmt.Errorf("update scout: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return scoutrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ScoutID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return scoutrepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM scouts WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete scout: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return scoutrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ScoutID) (scoutrepo.Scout, error) {
	if r.pool == nil {
		return scoutrepo.Scout{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return scoutrepo.Scout{}, scoutrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, selectScout+` WHERE id = $1`, uid)
	return scanScout(row)
}

func (r *Repo) List(ctx context.Context) ([]scoutrepo.Scout, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectScout+` ORDER BY lower(name) COLLATE "C" ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scouts: %w", err)
	}
	defer rows.Close()

	out := make([]scoutrepo.Scout, 0)
	for rows.Next() {
		s, err := scanScout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scouts: %w", err)
	}
	return out, nil
}

func scanScout(row pgx.Row) (scoutrepo.Scout, error) {
	var (
		id        uuid.UUID
		name      string
		troop     *string
		age       *int32
		email     *string
		createdAt time.Time
	)
	if err := row.Scan(&id, &name, &troop, &age, &email, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scoutrepo.Scout{}, scoutrepo.ErrNotFound
		}
		return scoutrepo.Scout{}, fmt.Errorf("scan scout: %w", err)
	}
	s := scoutrepo.Scout{
		ID:        domain.ScoutID(id.String()),
		Name:      name,
		Troop:     troop,
		Email:     email,
		CreatedAt: createdAt.UTC(),
	}
	if age != nil {
		v := int(*age)
		s.Age = &v
	}
	return s, nil
}
