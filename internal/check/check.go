package check

import (
	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/strategy"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// Mode selects how coverage gaps are classified. Strict mode turns them into
// ERROR diagnostics that block the build; permissive mode downgrades them to
// WARN.
type Mode string

const (
	ModeStrict     Mode = "STRICT"
	ModePermissive Mode = "PERMISSIVE"
)

// Diagnostic is one finding of the build-time constraint pass.
type Diagnostic struct {
	Severity     Severity          `json:"severity"`
	AbstractType string            `json:"abstractType"`
	Variant      string            `json:"variant,omitempty"`
	Strategy     strategy.Strategy `json:"strategy,omitempty"`
	Message      string            `json:"message"`
	Hint         string            `json:"hint,omitempty"`
}

// ValidationError is the ERROR-severity subset of a build report. A build
// that produced one must not proceed to serve resolutions.
type ValidationError []*Diagnostic

func (e ValidationError) Error() string {
	msg := "constraint violations found:\n"
	for _, d := range e {
		line := "- " + d.Message
		if d.Hint != "" {
			line += " (hint: " + d.Hint + ")"
		}
		msg += line + "\n"
	}
	return msg
}

// Errors extracts the ERROR-severity diagnostics as a ValidationError, or nil
// when there are none.
func Errors(diags []*Diagnostic) ValidationError {
	var out ValidationError
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Run executes the constraint pass over a frozen registry. It runs once,
// after registration closes, and determines per abstract type whether every
// variant is guaranteed resolvable under the enabled strategies:
//
//   - RESOLVE_TYPE is satisfied when the abstract type carries a resolution
//     hook; a satisfied hook covers every variant since it wins at runtime.
//   - IS_TYPE_OF covers a variant holding a predicate, or whose static
//     discriminant literal matches its declared name (a fallback proof).
//   - TYPENAME_FIELD cannot be verified statically; coverage is recorded as
//     provisional and an INFO diagnostic notes the deferral to runtime.
//
// A variant no enabled strategy covers produces a diagnostic whose severity
// depends on mode. The full list, all severities included, is returned for
// the build caller to report.
func Run(reg *registry.Registry, cfg strategy.Config, mode Mode) []*Diagnostic {
	var diags []*Diagnostic
	for _, at := range reg.AbstractTypes() {
		diags = append(diags, checkAbstractType(reg, at, cfg, mode)...)
	}
	return diags
}

func checkAbstractType(reg *registry.Registry, at *registry.AbstractType, cfg strategy.Config, mode Mode) []*Diagnostic {
	var diags []*Diagnostic

	variants := reg.PossibleTypes(at.Name)
	if len(variants) == 0 {
		return append(diags, diagNoVariants(at, mode))
	}

	for _, v := range variants {
		if v.Discriminant != "" && v.Discriminant != v.Name {
			diags = append(diags, diagDiscriminantMismatch(at, v))
		}
	}

	if cfg.TypenameField {
		// Soft proof: whether a resolver emits the discriminant field is a
		// property of arbitrary runtime code. Coverage is provisional.
		return append(diags, diagTypenameDeferred(at))
	}

	if !cfg.ResolveType && !cfg.IsTypeOf {
		return append(diags, diagNoStrategyEnabled(at, mode))
	}

	if cfg.ResolveType && at.ResolveType != nil {
		return diags
	}

	for _, v := range variants {
		if cfg.IsTypeOf && (v.IsTypeOf != nil || (v.Discriminant != "" && v.Discriminant == v.Name)) {
			continue
		}
		diags = append(diags, diagUncoveredVariant(at, v, cfg, mode))
	}
	return diags
}
