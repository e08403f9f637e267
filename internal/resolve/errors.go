package resolve

import (
	"fmt"

	"github.com/hanpama/typegraph/internal/registry"
)

// UnresolvableTypeError reports that no strategy produced a concrete variant
// for a value, or that the centralized hook named a type outside the variant
// set. It is scoped to the single value being resolved; the surrounding
// execution engine reports it as a field-level failure and unrelated
// resolutions proceed.
type UnresolvableTypeError struct {
	AbstractType  string
	Kind          registry.Kind
	Returned      string // the hook's answer, when it named an unknown variant
	ValidVariants []string
}

func (e *UnresolvableTypeError) Error() string {
	if e.Returned != "" {
		return fmt.Sprintf("abstract type %q must resolve to one of %v, got %q", e.AbstractType, e.ValidVariants, e.Returned)
	}
	return fmt.Sprintf("abstract type %q could not be resolved to a concrete variant; registered variants are %v", e.AbstractType, e.ValidVariants)
}

func errUnknownVariantName(def *registry.AbstractType, returned string, valid []string) *UnresolvableTypeError {
	return &UnresolvableTypeError{AbstractType: def.Name, Kind: def.Kind, Returned: returned, ValidVariants: valid}
}

func errUnresolvable(def *registry.AbstractType, valid []string) *UnresolvableTypeError {
	return &UnresolvableTypeError{AbstractType: def.Name, Kind: def.Kind, ValidVariants: valid}
}
