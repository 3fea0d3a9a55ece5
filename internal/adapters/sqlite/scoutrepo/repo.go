package scoutrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

// Repo is a SQLite implementation of scoutrepo.Repository.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const selectScout = `
	SELECT id, name, troop, age, email, created_at
	FROM scouts
`

func (r *Repo) Create(ctx context.Context, s scoutrepo.Scout) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scouts (id, name, troop, age, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(s.ID),
		s.Name,
		s.Troop,
		s.Age,
		s.Email,
		sqlite.ToMicros(s.CreatedAt),
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return scoutrepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert scout: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, s scoutrepo.Scout) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE scouts
		SET name = ?, troop = ?, age = ?, email = ?
		WHERE id = ?
	`,
		s.Name,
		s.Troop,
		s.Age,
		s.Email,
		string(s.ID),
	)
	if err != nil {
		return fmt.Errorf("update scout: %w", err)
	}
	return requireOneRow(res)
}

func (r *Repo) Delete(ctx context.Context, id domain.ScoutID) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM scouts WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete scout: %w", err)
	}
	return requireOneRow(res)
}

func (r *Repo) GetByID(ctx context.Context, id domain.ScoutID) (scoutrepo.Scout, error) {
	if r.db == nil {
		return scoutrepo.Scout{}, errors.New("nil sqlite db")
	}
	row := r.db.QueryRowContext(ctx, selectScout+` WHERE id = ?`, string(id))
	return scanScout(row)
}

func (r *Repo) List(ctx context.Context) ([]scoutrepo.Scout, error) {
	if r.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := r.db.QueryContext(ctx, selectScout+` ORDER BY lower(name) ASC, id ASC`)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScout(row rowScanner) (scoutrepo.Scout, error) {
	var (
		id        string
		name      string
		troop     sql.NullString
		age       sql.NullInt64
		email     sql.NullString
		createdAt int64
	)
	if err := row.Scan(&id, &name, &troop, &age, &email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scoutrepo.Scout{}, scoutrepo.ErrNotFound
		}
		return scoutrepo.Scout{}, fmt.Errorf("scan scout: %w", err)
	}
	s := scoutrepo.Scout{
		ID:        domain.ScoutID(id),
		Name:      name,
		CreatedAt: sqlite.FromMicros(createdAt),
	}
	if troop.Valid {
		s.Troop = &troop.String
	}
	if age.Valid {
		v := int(age.Int64)
		s.Age = &v
	}
	if email.Valid {
		s.Email = &email.String
	}
	return s, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return scoutrepo.ErrNotFound
	}
	return nil
}
