package domain

import "time"

// Scout is a tracked individual on the roster.
//
// Name is always non-empty after normalization. Troop, Age and Email are
// optional; nil means unset (never an empty string).
type Scout struct {
	ID    ScoutID
	Name  string
	Troop *string
	Age   *int
	Email *string

	CreatedAt time.Time
}
