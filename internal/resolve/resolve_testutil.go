package resolve

import (
	"context"
	"testing"

	"github.com/hanpama/typegraph/internal/registry"
)

// hasKey is a predicate matching map values carrying the given key.
func hasKey(key string) registry.PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return false, nil
		}
		_, ok = m[key]
		return ok, nil
	}
}

// hasPositiveInt is a predicate matching map values whose key holds an int > 0.
func hasPositiveInt(key string) registry.PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return false, nil
		}
		n, ok := m[key].(int)
		return ok && n > 0, nil
	}
}

// mediaRegistry builds the Media union used across resolver tests: Photo
// matches values with a positive width, Movie values with a rating, Song
// values with an album. Declaration order is Photo, Movie, Song.
func mediaRegistry(t *testing.T, hook registry.TypeResolverFunc) *registry.Registry {
	t.Helper()
	b := registry.NewBuilder()
	if err := b.RegisterAbstractType(registry.AbstractType{
		Name:        "Media",
		Kind:        registry.KindUnion,
		Variants:    []string{"Photo", "Movie", "Song"},
		ResolveType: hook,
	}); err != nil {
		t.Fatalf("register abstract type: %v", err)
	}
	variants := []registry.Variant{
		{Name: "Photo", IsTypeOf: hasPositiveInt("width")},
		{Name: "Movie", IsTypeOf: hasKey("rating")},
		{Name: "Song", IsTypeOf: hasKey("album")},
	}
	for _, v := range variants {
		if err := b.RegisterVariant(v); err != nil {
			t.Fatalf("register variant: %v", err)
		}
	}
	reg, err := b.Freeze()
	if err != nil {
		t.Fatalf("freeze error: %v", err)
	}
	return reg
}
