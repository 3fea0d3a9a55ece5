package domain

import "time"

// The badge-tracking shapes below mirror the backend tables. No screen reads or
// writes them yet.

type MeritBadge struct {
	ID          MeritBadgeID
	Name        string
	Description *string
	Category    *string
	CreatedAt   time.Time
}

type Requirement struct {
	ID           RequirementID
	MeritBadgeID MeritBadgeID
	Number       int
	Description  string
	CreatedAt    time.Time
}

type ScoutProgress struct {
	ID            ProgressID
	ScoutID       ScoutID
	RequirementID RequirementID
	Completed     bool
	CompletedDate *time.Time // date-only semantics at the edges
	Notes         *string
	CounselorName *string
	CreatedAt     time.Time
}
