package opid

import (
	"context"
	"math/rand/v2"
)

// key is the context key for the operation ID.
type key struct{}

// NewContext returns a copy of parent carrying a fresh random operation ID,
// along with the generated ID. Resolution events carry it so subscribers can
// correlate start and finish pairs.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int64()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the operation ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}
