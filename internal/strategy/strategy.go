package strategy

// Strategy identifies one of the three abstract-type resolution strategies.
type Strategy string

const (
	StrategyResolveType   Strategy = "RESOLVE_TYPE"
	StrategyIsTypeOf      Strategy = "IS_TYPE_OF"
	StrategyTypenameField Strategy = "TYPENAME_FIELD"
)

// Config is the complete, resolved strategy configuration.
//
// Defaults when built with no options:
// - ResolveType:   true
// - IsTypeOf:      false
// - TypenameField: false
// - RuntimeChecks: true
//
// Replace-not-merge: supplying ANY of the three strategy options resets the
// unlisted strategy flags to false instead of inheriting their defaults, so a
// partial configuration never silently enables a strategy the caller did not
// name. WithRuntimeChecks does not count as a strategy option and does not
// trigger the reset.
//
// Coupling, applied after the override step: TypenameField=true forces
// RuntimeChecks=false, because whether a resolver emits a discriminant field
// is a property of arbitrary runtime code that the consistency checker
// cannot verify.
//
// Config is a plain value. Build it once at startup with Configure and pass
// it by value; copies are independent and safe for concurrent reads.

type Config struct {
	ResolveType   bool
	IsTypeOf      bool
	TypenameField bool
	RuntimeChecks bool
}

// Enabled reports whether the given strategy flag is set.
func (c Config) Enabled(s Strategy) bool {
	switch s {
	case StrategyResolveType:
		return c.ResolveType
	case StrategyIsTypeOf:
		return c.IsTypeOf
	case StrategyTypenameField:
		return c.TypenameField
	}
	return false
}

// Option mutates the partial configuration consumed by Configure.
//
// Use WithX helpers below. Supplying the same option twice keeps the last
// value.

type Option func(*partial)

type partial struct {
	resolveType   *bool
	isTypeOf      *bool
	typenameField *bool
	runtimeChecks *bool
}

func WithResolveType(enabled bool) Option   { return func(p *partial) { p.resolveType = &enabled } }
func WithIsTypeOf(enabled bool) Option      { return func(p *partial) { p.isTypeOf = &enabled } }
func WithTypenameField(enabled bool) Option { return func(p *partial) { p.typenameField = &enabled } }
func WithRuntimeChecks(enabled bool) Option { return func(p *partial) { p.runtimeChecks = &enabled } }

// Configure resolves a partial configuration into a complete Config.
// See the Config documentation for the override and coupling rules.
func Configure(opts ...Option) Config {
	var p partial
	for _, opt := range opts {
		opt(&p)
	}

	cfg := Config{ResolveType: true, RuntimeChecks: true}

	if p.resolveType != nil || p.isTypeOf != nil || p.typenameField != nil {
		cfg.ResolveType = p.resolveType != nil && *p.resolveType
		cfg.IsTypeOf = p.isTypeOf != nil && *p.isTypeOf
		cfg.TypenameField = p.typenameField != nil && *p.typenameField
	}
	if p.runtimeChecks != nil {
		cfg.RuntimeChecks = *p.runtimeChecks
	}
	if cfg.TypenameField {
		cfg.RuntimeChecks = false
	}
	return cfg
}
