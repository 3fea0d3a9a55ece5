package domain

import (
	"strconv"
	"strings"
)

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for scout name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// OptionalText trims s and returns nil when nothing is left.
// Optional text columns never store empty strings.
func OptionalText(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

// ParseOptionalAge parses a form age value. Blank input is unset (nil).
// Values must fit a 32-bit integer column in every backend.
func ParseOptionalAge(s string) (*int, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, err
	}
	age := int(n)
	return &age, nil
}
