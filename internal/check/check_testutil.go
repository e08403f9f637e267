package check

import (
	"context"
	"testing"

	"github.com/hanpama/typegraph/internal/registry"
)

// mustFreeze freezes the builder and fails the test on error.
func mustFreeze(t *testing.T, b *registry.Builder) *registry.Registry {
	t.Helper()
	reg, err := b.Freeze()
	if err != nil {
		t.Fatalf("freeze error: %v", err)
	}
	return reg
}

func hookReturning(name string) registry.TypeResolverFunc {
	return func(ctx context.Context, value any) (string, error) { return name, nil }
}

func predReturning(answer bool) registry.PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) { return answer, nil }
}
