package check

import (
	"fmt"
	"strings"

	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/strategy"
)

// Common reusable diagnostic constructors (template helpers)
// NOTE: Keep messages stable to avoid breaking snapshot tests.

const (
	hintImplementPredicate   = "implement a predicate on the variant"
	hintImplementResolveType = "implement a discriminant function on the abstract type"
	hintEmitDiscriminant     = "include a __typename discriminant field in resolver output"
	hintEnableStrategy       = "enable at least one resolution strategy"
	hintRegisterVariant      = "register at least one variant"
	hintAlignDiscriminant    = "align the static discriminant literal with the variant name"
)

func severityFor(mode Mode) Severity {
	if mode == ModeStrict {
		return SeverityError
	}
	return SeverityWarn
}

func kindNoun(k registry.Kind) string { return strings.ToLower(string(k)) }

func diagUncoveredVariant(at *registry.AbstractType, v *registry.Variant, cfg strategy.Config, mode Mode) *Diagnostic {
	strat := strategy.StrategyResolveType
	hint := hintImplementResolveType
	if cfg.IsTypeOf {
		strat = strategy.StrategyIsTypeOf
		hint = hintImplementPredicate
	}
	return &Diagnostic{
		Severity:     severityFor(mode),
		AbstractType: at.Name,
		Variant:      v.Name,
		Strategy:     strat,
		Message:      fmt.Sprintf("variant %q of %s %q is not resolvable under the enabled strategies", v.Name, kindNoun(at.Kind), at.Name),
		Hint:         hint,
	}
}

func diagNoStrategyEnabled(at *registry.AbstractType, mode Mode) *Diagnostic {
	return &Diagnostic{
		Severity:     severityFor(mode),
		AbstractType: at.Name,
		Message:      fmt.Sprintf("no resolution strategy is enabled for %s %q", kindNoun(at.Kind), at.Name),
		Hint:         hintEnableStrategy,
	}
}

func diagTypenameDeferred(at *registry.AbstractType) *Diagnostic {
	return &Diagnostic{
		Severity:     SeverityInfo,
		AbstractType: at.Name,
		Strategy:     strategy.StrategyTypenameField,
		Message:      fmt.Sprintf("%s %q relies on the __typename discriminant; presence is verified at resolution time", kindNoun(at.Kind), at.Name),
		Hint:         hintEmitDiscriminant,
	}
}

func diagNoVariants(at *registry.AbstractType, mode Mode) *Diagnostic {
	return &Diagnostic{
		Severity:     severityFor(mode),
		AbstractType: at.Name,
		Message:      fmt.Sprintf("%s %q has no variants", kindNoun(at.Kind), at.Name),
		Hint:         hintRegisterVariant,
	}
}

func diagDiscriminantMismatch(at *registry.AbstractType, v *registry.Variant) *Diagnostic {
	return &Diagnostic{
		Severity:     SeverityWarn,
		AbstractType: at.Name,
		Variant:      v.Name,
		Strategy:     strategy.StrategyTypenameField,
		Message:      fmt.Sprintf("variant %q declares static discriminant %q which does not match its name", v.Name, v.Discriminant),
		Hint:         hintAlignDiscriminant,
	}
}
