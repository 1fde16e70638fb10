// Package config reads typed settings from a file, the environment and
// built-in defaults.
package config

import (
	"io"
	"time"
)

// Config is the read side of the settings tree. Keys are dotted paths such
// as "database.pool.max_conns"; a missing key yields the zero value.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64
	GetString(key string) string

	// GetArray accepts either a list or a comma separated string.
	GetArray(key string) []string

	// Durations are stored as plain integers in the unit the getter names.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration
}
