package engine

import (
	"context"
	"time"

	"github.com/hanpama/typegraph/internal/check"
	"github.com/hanpama/typegraph/internal/consistency"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/opid"
	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/resolve"
	"github.com/hanpama/typegraph/internal/strategy"
)

// typeResolver is the resolution step the engine delegates to: either the
// bare resolver or the consistency checker wrapping it.
type typeResolver interface {
	Resolve(ctx context.Context, abstractType string, value any) (resolve.Result, error)
}

// Options configures an engine build.
//
// Defaults:
// - Strategy:    strategy.Configure() (centralized strategy, runtime checks on)
// - CheckMode:   check.ModeStrict
// - Environment: consistency.EnvDevelopment
// - Thorough:    false
//
// All options are safe to leave zero-valued to use defaults.

type Options struct {
	Strategy    strategy.Config
	CheckMode   check.Mode
	Environment consistency.Environment
	Thorough    bool

	ResolveOptions []resolve.Option
}

// Option mutates Options
//
// Use WithX helpers below.

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Strategy:    strategy.Configure(),
		CheckMode:   check.ModeStrict,
		Environment: consistency.EnvDevelopment,
	}
}

func WithStrategy(cfg strategy.Config) Option   { return func(o *Options) { o.Strategy = cfg } }
func WithCheckMode(mode check.Mode) Option      { return func(o *Options) { o.CheckMode = mode } }
func WithThorough(enabled bool) Option          { return func(o *Options) { o.Thorough = enabled } }
func WithEnvironment(env consistency.Environment) Option {
	return func(o *Options) { o.Environment = env }
}
func WithDiscriminant(fn resolve.DiscriminantFunc) Option {
	return func(o *Options) { o.ResolveOptions = append(o.ResolveOptions, resolve.WithDiscriminant(fn)) }
}

// Engine is the assembled abstract-type resolution engine: the frozen
// registry, the resolved strategy configuration, the build diagnostics, and
// the resolver, wrapped with the consistency checker when runtime checks are
// enabled.
type Engine struct {
	reg      *registry.Registry
	cfg      strategy.Config
	diags    []*check.Diagnostic
	resolver typeResolver
}

// Build closes registration, runs the constraint pass and assembles the
// engine: freeze the registry, check coverage under the configured
// strategies, construct the resolver, and wrap it when runtime checks are on.
// ERROR-severity diagnostics abort the build with check.ValidationError; the
// system must not serve resolutions past them. Registration problems surface
// as *registry.RegistrationError.
func Build(b *registry.Builder, opts ...Option) (*Engine, error) {
	started := time.Now()
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	reg, err := b.Freeze()
	if err != nil {
		eventbus.Publish(context.Background(), events.BuildFinish{Err: err, Duration: time.Since(started)})
		return nil, err
	}

	diags := check.Run(reg, o.Strategy, o.CheckMode)
	verrs := check.Errors(diags)

	var buildErr error
	if verrs != nil {
		buildErr = verrs
	}
	eventbus.Publish(context.Background(), events.BuildFinish{
		Diagnostics: len(diags),
		Errors:      len(verrs),
		Err:         buildErr,
		Duration:    time.Since(started),
	})
	if buildErr != nil {
		return nil, buildErr
	}

	r := resolve.New(reg, o.Strategy, o.ResolveOptions...)
	var tr typeResolver = r
	if o.Strategy.RuntimeChecks {
		tr = consistency.Wrap(r,
			consistency.WithEnvironment(o.Environment),
			consistency.WithThorough(o.Thorough),
		)
	}

	return &Engine{reg: reg, cfg: o.Strategy, diags: diags, resolver: tr}, nil
}

// Resolve returns the concrete variant and the strategy that decided it for a
// value of the named abstract type. Each call is tagged with an operation ID
// and published as a ResolveStart/ResolveFinish event pair.
func (e *Engine) Resolve(ctx context.Context, abstractType string, value any) (resolve.Result, error) {
	ctx, id := opid.NewContext(ctx)
	started := time.Now()
	eventbus.Publish(ctx, events.ResolveStart{OpID: id, AbstractType: abstractType})

	res, err := e.resolver.Resolve(ctx, abstractType, value)

	eventbus.Publish(ctx, events.ResolveFinish{
		OpID:         id,
		AbstractType: abstractType,
		Variant:      res.Variant,
		Strategy:     res.Strategy,
		Err:          err,
		Duration:     time.Since(started),
	})
	return res, err
}

// ResolveType resolves the concrete type name for a value of the named
// abstract type. It is the surface the surrounding execution engine calls
// when a field's declared type is abstract.
func (e *Engine) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	res, err := e.Resolve(ctx, abstractType, value)
	if err != nil {
		return "", err
	}
	return res.Variant, nil
}

// Diagnostics returns the full constraint report of the build, all severities
// included.
func (e *Engine) Diagnostics() []*check.Diagnostic { return e.diags }

// Registry returns the frozen registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Config returns the resolved strategy configuration.
func (e *Engine) Config() strategy.Config { return e.cfg }
