package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/typegraph/internal/check"
	"github.com/hanpama/typegraph/internal/consistency"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/resolve"
	"github.com/hanpama/typegraph/internal/strategy"
)

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

// mediaBuilder declares the Media union with Photo, Movie and Song variants,
// each recognizable by a characteristic field.
func mediaBuilder(t *testing.T, hook registry.TypeResolverFunc) *registry.Builder {
	t.Helper()
	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{
		Name:        "Media",
		Kind:        registry.KindUnion,
		Variants:    []string{"Photo", "Movie", "Song"},
		ResolveType: hook,
	}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Photo", IsTypeOf: hasKey("width")}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Movie", IsTypeOf: hasKey("rating")}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Song", IsTypeOf: hasKey("album")}))
	return b
}

func useBus(t *testing.T) *eventbus.Bus {
	t.Helper()
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })
	return bus
}

func TestBuildAndResolveByPredicate(t *testing.T) {
	cfg := strategy.Configure(strategy.WithIsTypeOf(true))
	eng, err := Build(mediaBuilder(t, nil), WithStrategy(cfg))
	require.NoError(t, err)
	require.Empty(t, eng.Diagnostics())

	res, err := eng.Resolve(context.Background(), "Media", map[string]any{"width": 800})
	require.NoError(t, err)
	want := resolve.Result{Variant: "Photo", Strategy: strategy.StrategyIsTypeOf}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("resolve result mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclarationOrderBreaksPredicateTies(t *testing.T) {
	cfg := strategy.Configure(strategy.WithIsTypeOf(true))
	eng, err := Build(mediaBuilder(t, nil), WithStrategy(cfg))
	require.NoError(t, err)

	name, err := eng.ResolveType(context.Background(), "Media", map[string]any{
		"rating": "PG",
		"album":  "Overlap",
	})
	require.NoError(t, err)
	require.Equal(t, "Movie", name)
}

func TestHookReturningUnknownVariantFails(t *testing.T) {
	hook := func(ctx context.Context, value any) (string, error) { return "Document", nil }
	eng, err := Build(mediaBuilder(t, hook))
	require.NoError(t, err)

	_, err = eng.ResolveType(context.Background(), "Media", map[string]any{"width": 800})
	var unresolvable *resolve.UnresolvableTypeError
	require.ErrorAs(t, err, &unresolvable)
	require.Equal(t, "Document", unresolvable.Returned)
	if diff := cmp.Diff([]string{"Photo", "Movie", "Song"}, unresolvable.ValidVariants); diff != "" {
		t.Fatalf("valid variants mismatch (-want +got):\n%s", diff)
	}
}

func TestDisabledDiscriminantIsIgnored(t *testing.T) {
	cfg := strategy.Configure(strategy.WithResolveType(true))
	eng, err := Build(mediaBuilder(t, nil), WithStrategy(cfg), WithCheckMode(check.ModePermissive))
	require.NoError(t, err)
	require.Len(t, eng.Diagnostics(), 3)

	_, err = eng.ResolveType(context.Background(), "Media", map[string]any{"__typename": "Photo"})
	var unresolvable *resolve.UnresolvableTypeError
	require.ErrorAs(t, err, &unresolvable)
	require.Empty(t, unresolvable.Returned)
}

func TestStrictBuildBlocksOnUncoveredVariant(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{
		Name:     "Media",
		Kind:     registry.KindUnion,
		Variants: []string{"Photo", "Song"},
	}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Photo", IsTypeOf: hasKey("width")}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Song"}))

	eng, err := Build(b, WithStrategy(strategy.Configure(strategy.WithIsTypeOf(true))))
	require.Nil(t, eng)

	var verr check.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr, 1)
	require.Equal(t, check.SeverityError, verr[0].Severity)
	require.Equal(t, "Song", verr[0].Variant)
}

func TestPermissiveBuildProceedsPastUncoveredVariant(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{
		Name:     "Media",
		Kind:     registry.KindUnion,
		Variants: []string{"Photo", "Song"},
	}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Photo", IsTypeOf: hasKey("width")}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Song"}))

	eng, err := Build(b,
		WithStrategy(strategy.Configure(strategy.WithIsTypeOf(true))),
		WithCheckMode(check.ModePermissive),
	)
	require.NoError(t, err)
	require.Len(t, eng.Diagnostics(), 1)
	require.Equal(t, check.SeverityWarn, eng.Diagnostics()[0].Severity)

	name, err := eng.ResolveType(context.Background(), "Media", map[string]any{"width": 640})
	require.NoError(t, err)
	require.Equal(t, "Photo", name)
}

func TestBuildSurfacesRegistrationErrors(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{
		Name:     "Media",
		Kind:     registry.KindUnion,
		Variants: []string{"Photo"},
	}))

	eng, err := Build(b)
	require.Nil(t, eng)
	var rerr *registry.RegistrationError
	require.ErrorAs(t, err, &rerr)
}

func TestResolveEventsCarryOutcome(t *testing.T) {
	useBus(t)
	var starts []events.ResolveStart
	var finishes []events.ResolveFinish
	eventbus.Subscribe(func(ctx context.Context, ev events.ResolveStart) { starts = append(starts, ev) })
	eventbus.Subscribe(func(ctx context.Context, ev events.ResolveFinish) { finishes = append(finishes, ev) })

	cfg := strategy.Configure(strategy.WithIsTypeOf(true))
	eng, err := Build(mediaBuilder(t, nil), WithStrategy(cfg))
	require.NoError(t, err)

	_, err = eng.ResolveType(context.Background(), "Media", map[string]any{"album": "Blue"})
	require.NoError(t, err)
	_, err = eng.ResolveType(context.Background(), "Media", map[string]any{"codec": "av1"})
	require.Error(t, err)

	require.Len(t, starts, 2)
	require.Len(t, finishes, 2)
	require.Equal(t, starts[0].OpID, finishes[0].OpID)
	require.Equal(t, "Media", finishes[0].AbstractType)
	require.Equal(t, "Song", finishes[0].Variant)
	require.Equal(t, strategy.StrategyIsTypeOf, finishes[0].Strategy)
	require.NoError(t, finishes[0].Err)
	require.Error(t, finishes[1].Err)
	require.Empty(t, finishes[1].Variant)
}

func TestBuildFinishEventReportsDiagnostics(t *testing.T) {
	useBus(t)
	var builds []events.BuildFinish
	eventbus.Subscribe(func(ctx context.Context, ev events.BuildFinish) { builds = append(builds, ev) })

	_, err := Build(mediaBuilder(t, nil), WithStrategy(strategy.Configure(strategy.WithIsTypeOf(true))))
	require.NoError(t, err)

	b := registry.NewBuilder()
	require.NoError(t, b.RegisterAbstractType(registry.AbstractType{
		Name:     "Media",
		Kind:     registry.KindUnion,
		Variants: []string{"Photo"},
	}))
	require.NoError(t, b.RegisterVariant(registry.Variant{Name: "Photo"}))
	_, err = Build(b, WithStrategy(strategy.Configure(strategy.WithIsTypeOf(true))))
	require.Error(t, err)

	require.Len(t, builds, 2)
	require.Equal(t, 0, builds[0].Errors)
	require.NoError(t, builds[0].Err)
	require.Equal(t, 1, builds[1].Errors)
	require.Error(t, builds[1].Err)
}

func TestRuntimeChecksPublishMismatchInDevelopment(t *testing.T) {
	useBus(t)
	var mismatches []events.TypeMismatch
	eventbus.Subscribe(func(ctx context.Context, ev events.TypeMismatch) { mismatches = append(mismatches, ev) })

	hook := func(ctx context.Context, value any) (string, error) { return "Song", nil }
	eng, err := Build(mediaBuilder(t, hook))
	require.NoError(t, err)

	name, err := eng.ResolveType(context.Background(), "Media", map[string]any{"__typename": "Photo"})
	require.NoError(t, err)
	require.Equal(t, "Song", name)

	require.Len(t, mismatches, 1)
	require.Equal(t, "Media", mismatches[0].AbstractType)
	require.Equal(t, "Song", mismatches[0].Resolved)
	require.Equal(t, "Photo", mismatches[0].Conflicting)
}

func TestRuntimeChecksFailInProduction(t *testing.T) {
	hook := func(ctx context.Context, value any) (string, error) { return "Song", nil }
	eng, err := Build(mediaBuilder(t, hook), WithEnvironment(consistency.EnvProduction))
	require.NoError(t, err)

	_, err = eng.ResolveType(context.Background(), "Media", map[string]any{"__typename": "Photo"})
	var mismatch *consistency.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "Media", mismatch.AbstractType)
}

func TestTypenameFieldStrategyDisablesRuntimeChecks(t *testing.T) {
	useBus(t)
	var mismatches []events.TypeMismatch
	eventbus.Subscribe(func(ctx context.Context, ev events.TypeMismatch) { mismatches = append(mismatches, ev) })

	hook := func(ctx context.Context, value any) (string, error) { return "Song", nil }
	eng, err := Build(mediaBuilder(t, hook),
		WithStrategy(strategy.Configure(strategy.WithTypenameField(true))),
		WithEnvironment(consistency.EnvProduction),
	)
	require.NoError(t, err)
	require.False(t, eng.Config().RuntimeChecks)

	name, err := eng.ResolveType(context.Background(), "Media", map[string]any{"__typename": "Photo"})
	require.NoError(t, err)
	require.Equal(t, "Song", name)
	require.Empty(t, mismatches)
}

func TestCustomDiscriminantOption(t *testing.T) {
	type tagged struct{ Tag string }
	fn := func(value any) (string, bool) {
		tv, ok := value.(tagged)
		if !ok || tv.Tag == "" {
			return "", false
		}
		return tv.Tag, true
	}

	eng, err := Build(mediaBuilder(t, nil),
		WithStrategy(strategy.Configure(strategy.WithTypenameField(true))),
		WithCheckMode(check.ModePermissive),
		WithDiscriminant(fn),
	)
	require.NoError(t, err)

	name, err := eng.ResolveType(context.Background(), "Media", tagged{Tag: "Movie"})
	require.NoError(t, err)
	require.Equal(t, "Movie", name)
}
