package domain

// SubjectID is the authenticated subject of a request (session or token "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// ScoutID is an internal identifier for a scout record.
type ScoutID string

// MeritBadgeID identifies a merit badge.
type MeritBadgeID string

// RequirementID identifies a single numbered requirement of a merit badge.
type RequirementID string

// ProgressID identifies a scout's completion record for one requirement.
type ProgressID string
