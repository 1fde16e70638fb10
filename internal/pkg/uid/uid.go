// Package uid generates identifiers for persisted records and correlation.
package uid

import "github.com/google/uuid"

// NumberID generates numeric, roughly time-ordered identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates textual identifiers.
type StringID interface {
	Generate() string
}

// UUID yields version 7 UUIDs and drops to version 4 when v7 cannot read
// the clock sequence.
type UUID struct{}

func NewUUID() *UUID { return &UUID{} }

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
