package instrument

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// SetCorrelationID returns a copy of ctx carrying id as its correlation id.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the correlation id stored in ctx, or "" when none is set.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// EnsureCorrelationID returns ctx unchanged when it already carries a
// correlation id, otherwise a copy with a fresh UUIDv7.
func EnsureCorrelationID(ctx context.Context) context.Context {
	if GetCorrelationID(ctx) != "" {
		return ctx
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return SetCorrelationID(ctx, id.String())
}
