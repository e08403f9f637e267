package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/strategy"
)

func TestPredicateResolvesPhoto(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	res, err := r.Resolve(context.Background(), "Media", map[string]any{"width": 10, "url": "x"})
	require.NoError(t, err)
	require.Equal(t, Result{Variant: "Photo", Strategy: strategy.StrategyIsTypeOf}, res)
}

func TestPredicateDeclarationOrderTieBreak(t *testing.T) {
	// The value satisfies both the Movie and the Song predicate; Movie is
	// declared first and must win silently.
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	res, err := r.Resolve(context.Background(), "Media", map[string]any{"rating": "g", "album": "x"})
	require.NoError(t, err)
	require.Equal(t, "Movie", res.Variant)
}

func TestHookReturningUnknownVariant(t *testing.T) {
	hook := func(ctx context.Context, value any) (string, error) { return "Unknown", nil }
	reg := mediaRegistry(t, hook)
	r := New(reg, strategy.Configure())

	_, err := r.Resolve(context.Background(), "Media", map[string]any{"width": 10})
	var unres *UnresolvableTypeError
	require.ErrorAs(t, err, &unres)
	require.Equal(t, "Unknown", unres.Returned)
	if diff := cmp.Diff([]string{"Photo", "Movie", "Song"}, unres.ValidVariants); diff != "" {
		t.Fatalf("valid variants mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscriminantIgnoredWhenStrategyDisabled(t *testing.T) {
	// The value carries a valid discriminant, but with no strategy enabled
	// nothing may read it.
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithResolveType(false)))

	_, err := r.Resolve(context.Background(), "Media", map[string]any{TypenameKey: "Photo"})
	var unres *UnresolvableTypeError
	require.ErrorAs(t, err, &unres)
	require.Empty(t, unres.Returned)
}

func TestHookWinsOverDisagreeingStrategies(t *testing.T) {
	// Discriminant says Photo, every predicate would say Movie first, the
	// hook says Song. The hook answer wins unconditionally.
	hook := func(ctx context.Context, value any) (string, error) { return "Song", nil }
	reg := mediaRegistry(t, hook)
	r := New(reg, strategy.Configure(
		strategy.WithResolveType(true),
		strategy.WithIsTypeOf(true),
		strategy.WithTypenameField(true),
	))

	value := map[string]any{TypenameKey: "Photo", "rating": "g", "album": "x"}
	res, err := r.Resolve(context.Background(), "Media", value)
	require.NoError(t, err)
	require.Equal(t, Result{Variant: "Song", Strategy: strategy.StrategyResolveType}, res)
}

func TestHookRunsEvenWhenFlagDisabled(t *testing.T) {
	// Presence activates the hook; the flag only feeds the static pass.
	hook := func(ctx context.Context, value any) (string, error) { return "Movie", nil }
	reg := mediaRegistry(t, hook)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	res, err := r.Resolve(context.Background(), "Media", map[string]any{"width": 10})
	require.NoError(t, err)
	require.Equal(t, "Movie", res.Variant)
	require.Equal(t, strategy.StrategyResolveType, res.Strategy)
}

func TestDiscriminantMatch(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithTypenameField(true)))

	res, err := r.Resolve(context.Background(), "Media", map[string]any{TypenameKey: "Movie"})
	require.NoError(t, err)
	require.Equal(t, Result{Variant: "Movie", Strategy: strategy.StrategyTypenameField}, res)
}

func TestUnknownDiscriminantFallsThroughToPredicates(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithTypenameField(true), strategy.WithIsTypeOf(true)))

	value := map[string]any{TypenameKey: "Ghost", "album": "x"}
	res, err := r.Resolve(context.Background(), "Media", value)
	require.NoError(t, err)
	require.Equal(t, "Song", res.Variant)
	require.Equal(t, strategy.StrategyIsTypeOf, res.Strategy)
}

func TestNoPredicateMatches(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	_, err := r.Resolve(context.Background(), "Media", map[string]any{"title": "z"})
	var unres *UnresolvableTypeError
	require.ErrorAs(t, err, &unres)
	require.Equal(t, []string{"Photo", "Movie", "Song"}, unres.ValidVariants)
}

func TestResolveIsIdempotent(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))
	value := map[string]any{"rating": "g", "album": "x"}

	first, err1 := r.Resolve(context.Background(), "Media", value)
	second, err2 := r.Resolve(context.Background(), "Media", value)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, first, second)
}

func TestHookErrorPropagates(t *testing.T) {
	hookErr := fmt.Errorf("boom")
	hook := func(ctx context.Context, value any) (string, error) { return "", hookErr }
	reg := mediaRegistry(t, hook)
	r := New(reg, strategy.Configure())

	_, err := r.Resolve(context.Background(), "Media", map[string]any{})
	require.ErrorIs(t, err, hookErr)
}

func TestPredicateErrorPropagates(t *testing.T) {
	predErr := fmt.Errorf("bad value")
	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{Name: "Media", Kind: registry.KindUnion, Variants: []string{"Photo"}}))
	require.NoError(t, b.RegisterVariant(registry.Variant{
		Name:     "Photo",
		IsTypeOf: func(ctx context.Context, value any) (bool, error) { return false, predErr },
	}))
	reg, err := b.Freeze()
	require.NoError(t, err)

	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))
	_, err = r.Resolve(context.Background(), "Media", map[string]any{})
	require.ErrorIs(t, err, predErr)
}

func TestCancelledContextStopsResolution(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "Media", map[string]any{"width": 10})
	require.ErrorIs(t, err, context.Canceled)
}

func TestUnknownAbstractTypePanics(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure())

	require.Panics(t, func() {
		_, _ = r.Resolve(context.Background(), "Ghost", map[string]any{})
	})
}

type taggedValue struct {
	tag string
}

func TestCustomDiscriminantFunc(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithTypenameField(true)), WithDiscriminant(func(value any) (string, bool) {
		tv, ok := value.(taggedValue)
		return tv.tag, ok && tv.tag != ""
	}))

	res, err := r.Resolve(context.Background(), "Media", taggedValue{tag: "Song"})
	require.NoError(t, err)
	require.Equal(t, "Song", res.Variant)
}

func TestResolveTypeConvenience(t *testing.T) {
	reg := mediaRegistry(t, nil)
	r := New(reg, strategy.Configure(strategy.WithIsTypeOf(true)))

	name, err := r.ResolveType(context.Background(), "Media", map[string]any{"album": "x"})
	require.NoError(t, err)
	require.Equal(t, "Song", name)

	_, err = r.ResolveType(context.Background(), "Media", map[string]any{})
	require.Error(t, err)
}

func TestMapDiscriminant(t *testing.T) {
	name, ok := MapDiscriminant(map[string]any{TypenameKey: "Photo"})
	require.True(t, ok)
	require.Equal(t, "Photo", name)

	_, ok = MapDiscriminant(map[string]any{TypenameKey: 7})
	require.False(t, ok)
	_, ok = MapDiscriminant(map[string]any{TypenameKey: ""})
	require.False(t, ok)
	_, ok = MapDiscriminant("not a map")
	require.False(t, ok)
	_, ok = MapDiscriminant(nil)
	require.False(t, ok)
}
