package consistency

import (
	"context"
	"fmt"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/opid"
	"github.com/hanpama/typegraph/internal/resolve"
	"github.com/hanpama/typegraph/internal/strategy"
)

// Environment selects how a detected divergence is reported. Detection is
// identical in both environments; only the severity differs.
type Environment string

const (
	EnvDevelopment Environment = "DEVELOPMENT"
	EnvProduction  Environment = "PRODUCTION"
)

// TypeMismatchError reports that another strategy disagreed with the accepted
// resolution of a value.
type TypeMismatchError struct {
	AbstractType string
	Resolved     string
	Conflicting  string
	Strategy     strategy.Strategy
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch on %q: resolved to %q but %s indicated %q", e.AbstractType, e.Resolved, e.Strategy, e.Conflicting)
}

// Options configures the consistency checker.
//
// Defaults:
// - Environment: EnvDevelopment
// - Thorough:    false (baseline discriminant comparison only)
//
// All options are safe to leave zero-valued to use defaults.

type Options struct {
	Environment Environment
	Thorough    bool
}

// Option mutates Options
//
// Use WithX helpers below.

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Environment: EnvDevelopment}
}

func WithEnvironment(env Environment) Option { return func(o *Options) { o.Environment = env } }
func WithThorough(enabled bool) Option       { return func(o *Options) { o.Thorough = enabled } }

// Checker wraps a Resolver and rechecks each accepted result against the
// evidence the resolver did not use. It is redundancy over the static pass,
// not an independent source of truth: the resolver's answer is always the one
// returned unless a production environment escalates the divergence to an
// error.
//
// Baseline recheck compares an explicit discriminant carried by the value
// (the typename-field strategy is necessarily off while checks run, so the
// resolver itself never read it). Thorough mode additionally runs the
// variants' predicates, whether or not the predicate strategy is enabled, and
// compares the first one that fires. Evidence that errors while being
// gathered is discarded; a recheck must never turn a good resolution into a
// failure by itself.
type Checker struct {
	base     *resolve.Resolver
	env      Environment
	thorough bool
}

// Wrap builds a Checker over the base resolver. The engine installs it only
// when runtime checks are enabled in the configuration.
func Wrap(base *resolve.Resolver, opts ...Option) *Checker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Checker{base: base, env: o.Environment, thorough: o.Thorough}
}

// Resolve resolves through the base resolver, then rechecks the result. On
// divergence it publishes an events.TypeMismatch; in a production environment
// it also fails the resolution with *TypeMismatchError.
func (c *Checker) Resolve(ctx context.Context, abstractType string, value any) (resolve.Result, error) {
	res, err := c.base.Resolve(ctx, abstractType, value)
	if err != nil {
		return res, err
	}
	mismatch := c.recheck(ctx, abstractType, value, res)
	if mismatch == nil {
		return res, nil
	}

	id, _ := opid.FromContext(ctx)
	eventbus.Publish(ctx, events.TypeMismatch{
		OpID:         id,
		AbstractType: mismatch.AbstractType,
		Resolved:     mismatch.Resolved,
		Conflicting:  mismatch.Conflicting,
		Strategy:     mismatch.Strategy,
	})
	if c.env == EnvProduction {
		return resolve.Result{}, mismatch
	}
	return res, nil
}

// ResolveType resolves the concrete type name of an abstract value through
// the checker.
func (c *Checker) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	res, err := c.Resolve(ctx, abstractType, value)
	if err != nil {
		return "", err
	}
	return res.Variant, nil
}

func (c *Checker) recheck(ctx context.Context, abstractType string, value any, res resolve.Result) *TypeMismatchError {
	reg := c.base.Registry()

	if res.Strategy != strategy.StrategyTypenameField {
		if name, ok := c.base.Discriminant(value); ok && name != res.Variant && reg.IsPossibleType(abstractType, name) {
			return &TypeMismatchError{
				AbstractType: abstractType,
				Resolved:     res.Variant,
				Conflicting:  name,
				Strategy:     strategy.StrategyTypenameField,
			}
		}
	}
	if !c.thorough || res.Strategy == strategy.StrategyIsTypeOf {
		return nil
	}

	for _, v := range reg.PossibleTypes(abstractType) {
		if v.IsTypeOf == nil {
			continue
		}
		if ctx.Err() != nil {
			// The accepted answer stands; an abandoned recheck is not a
			// resolution failure.
			return nil
		}
		ok, err := v.IsTypeOf(ctx, value)
		if err != nil {
			continue
		}
		if ok {
			if v.Name != res.Variant {
				return &TypeMismatchError{
					AbstractType: abstractType,
					Resolved:     res.Variant,
					Conflicting:  v.Name,
					Strategy:     strategy.StrategyIsTypeOf,
				}
			}
			return nil
		}
	}
	return nil
}
