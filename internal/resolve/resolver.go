package resolve

import (
	"context"
	"fmt"

	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/strategy"
)

// Result is the outcome of one successful resolution: the concrete variant
// name and the strategy that produced it.
type Result struct {
	Variant  string
	Strategy strategy.Strategy
}

// Resolver decides which concrete variant an abstract-type value represents.
//
// Precedence contract
//   - The centralized hook (AbstractType.ResolveType) is consulted first
//     whenever it is present and its answer wins unconditionally, even when
//     other strategies are enabled and would disagree. An answer outside the
//     variant set fails with *UnresolvableTypeError listing the valid names.
//     Presence alone activates the hook at runtime; the ResolveType flag in
//     the configuration feeds the static constraint pass, not this step.
//   - Otherwise, when the typename-field strategy is enabled and the value
//     carries an explicit discriminant naming a registered variant of this
//     abstract type, that variant is the answer. A discriminant naming
//     anything else falls through to the next step.
//   - Otherwise, when the predicate strategy is enabled, variants are tried
//     in declaration order and the first predicate returning true wins
//     silently. Variants without predicates are skipped.
//   - Anything else fails with *UnresolvableTypeError.
//
// The configuration gates only whether the discriminant and predicate steps
// are attempted, never their relative order.
//
// Concurrency and cancellation
//   - A Resolver is pure over the frozen registry and configuration; it holds
//     no mutable state and is safe for unsynchronized concurrent use.
//   - Hooks and predicates receive the caller's context. Cancellation is
//     checked between precedence steps and between predicate invocations, so
//     an abandoned query stops cooperatively instead of running the rest of
//     the chain.
//   - Resolution is deterministic: identical value and frozen state yield an
//     identical outcome.
type Resolver struct {
	reg  *registry.Registry
	cfg  strategy.Config
	disc DiscriminantFunc
}

// Options configures value introspection for the resolver.
//
// Defaults:
// - Discriminant: MapDiscriminant (the "__typename" key of map values)
//
// All options are safe to leave zero-valued to use defaults.

type Options struct {
	Discriminant DiscriminantFunc
}

// Option mutates Options
//
// Use WithX helpers below.

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Discriminant: MapDiscriminant}
}

func WithDiscriminant(fn DiscriminantFunc) Option { return func(o *Options) { o.Discriminant = fn } }

// New builds a Resolver over a frozen registry and a resolved configuration.
func New(reg *registry.Registry, cfg strategy.Config, opts ...Option) *Resolver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Resolver{reg: reg, cfg: cfg, disc: o.Discriminant}
}

// Config returns the configuration the resolver was built with.
func (r *Resolver) Config() strategy.Config { return r.cfg }

// Registry returns the frozen registry the resolver reads from.
func (r *Resolver) Registry() *registry.Registry { return r.reg }

// Discriminant extracts the explicit discriminant of value using the
// configured extractor.
func (r *Resolver) Discriminant(value any) (string, bool) { return r.disc(value) }

// Resolve returns the concrete variant for a value of the named abstract
// type. An unknown abstract type name panics: names are expected to come
// straight from the caller's own schema, so a miss is a wiring bug, not
// input. Failures to resolve a known abstract type are returned as errors
// scoped to this single value.
func (r *Resolver) Resolve(ctx context.Context, abstractType string, value any) (Result, error) {
	def := r.reg.AbstractType(abstractType)
	if def == nil {
		panic(fmt.Sprintf("resolve: unknown abstract type %q", abstractType))
	}

	if def.ResolveType != nil {
		name, err := def.ResolveType(ctx, value)
		if err != nil {
			return Result{}, err
		}
		if !r.reg.IsPossibleType(def.Name, name) {
			return Result{}, errUnknownVariantName(def, name, r.reg.PossibleTypeNames(def.Name))
		}
		return Result{Variant: name, Strategy: strategy.StrategyResolveType}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if r.cfg.TypenameField {
		if name, ok := r.disc(value); ok && r.reg.IsPossibleType(def.Name, name) {
			return Result{Variant: name, Strategy: strategy.StrategyTypenameField}, nil
		}
	}

	if r.cfg.IsTypeOf {
		for _, v := range r.reg.PossibleTypes(def.Name) {
			if v.IsTypeOf == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			ok, err := v.IsTypeOf(ctx, value)
			if err != nil {
				return Result{}, err
			}
			if ok {
				return Result{Variant: v.Name, Strategy: strategy.StrategyIsTypeOf}, nil
			}
		}
	}

	return Result{}, errUnresolvable(def, r.reg.PossibleTypeNames(def.Name))
}

// ResolveType resolves the concrete type name of an abstract value. It is the
// surface the surrounding execution engine calls when a field's declared type
// is abstract.
func (r *Resolver) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	res, err := r.Resolve(ctx, abstractType, value)
	if err != nil {
		return "", err
	}
	return res.Variant, nil
}
