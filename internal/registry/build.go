package registry

import (
	"github.com/hanpama/typegraph/internal/strategy"
)

// Builder collects abstract-type and variant declarations by name and
// resolves cross-references once, at Freeze. Because references are resolved
// against the completed arena, registration order never affects correctness;
// it only determines tie-break order among variants.
//
// A Builder is not safe for concurrent use. Assembly is expected to run
// single-threaded at startup; the frozen Registry it produces is what gets
// shared.
type Builder struct {
	abstracts map[string]*AbstractType
	variants  map[string]*Variant

	abstractOrder []string
	variantOrder  []string

	frozen bool
}

// NewBuilder returns an empty declaration arena.
func NewBuilder() *Builder {
	return &Builder{
		abstracts: make(map[string]*AbstractType),
		variants:  make(map[string]*Variant),
	}
}

// RegisterAbstractType adds a union or interface declaration to the arena.
// The names in def.Variants may be registered before or after this call.
func (b *Builder) RegisterAbstractType(def AbstractType) error {
	b.mustMutable("RegisterAbstractType")
	if def.Name == "" {
		return errEmptyName("abstract type")
	}
	if def.Kind != KindUnion && def.Kind != KindInterface {
		return errInvalidKind(def.Name, def.Kind)
	}
	if _, ok := b.abstracts[def.Name]; ok {
		return errDuplicateAbstractType(def.Name)
	}
	d := def
	b.abstracts[d.Name] = &d
	b.abstractOrder = append(b.abstractOrder, d.Name)
	return nil
}

// RegisterVariant adds a concrete variant declaration to the arena. A variant
// is declared exactly once, carrying its complete membership set; membership
// in several abstract types is expressed through v.MemberOf, not through
// repeated registration. The abstract types it names may be registered before
// or after this call.
func (b *Builder) RegisterVariant(v Variant) error {
	b.mustMutable("RegisterVariant")
	if v.Name == "" {
		return errEmptyName("variant")
	}
	if _, ok := b.variants[v.Name]; ok {
		return errDuplicateVariant(v.Name)
	}
	d := v
	b.variants[d.Name] = &d
	b.variantOrder = append(b.variantOrder, d.Name)
	return nil
}

// BindResolveType attaches the centralized resolution hook to an already
// registered abstract type. Declarations loaded from SDL carry no code, so
// hosts bind their hooks here before Freeze.
func (b *Builder) BindResolveType(abstract string, fn TypeResolverFunc) error {
	b.mustMutable("BindResolveType")
	def, ok := b.abstracts[abstract]
	if !ok {
		return errUnknownBindTarget("abstract type", abstract)
	}
	def.ResolveType = fn
	return nil
}

// BindIsTypeOf attaches the membership predicate to an already registered
// variant.
func (b *Builder) BindIsTypeOf(variant string, fn PredicateFunc) error {
	b.mustMutable("BindIsTypeOf")
	v, ok := b.variants[variant]
	if !ok {
		return errUnknownBindTarget("variant", variant)
	}
	v.IsTypeOf = fn
	return nil
}

// Freeze resolves all cross-references and returns the immutable Registry.
// It fails with *RegistrationError when an abstract type names an
// unregistered variant, a variant declares membership in an unregistered
// abstract type, or a variant belongs to no abstract type at all. After a
// successful Freeze the Builder rejects further mutation.
func (b *Builder) Freeze() (*Registry, error) {
	b.mustMutable("Freeze")

	possible := make(map[string][]*Variant, len(b.abstracts))
	member := make(map[string]map[string]bool, len(b.abstracts))

	for _, name := range b.abstractOrder {
		def := b.abstracts[name]
		seen := make(map[string]bool, len(def.Variants))
		for _, ref := range def.Variants {
			v, ok := b.variants[ref]
			if !ok {
				return nil, errUnknownVariantRef(name, ref)
			}
			if !seen[ref] {
				seen[ref] = true
				possible[name] = append(possible[name], v)
			}
		}
		member[name] = seen
	}

	// Membership declared on variants appends after the abstract type's own
	// declaration list, in variant registration order.
	for _, vname := range b.variantOrder {
		v := b.variants[vname]
		for _, abstract := range v.MemberOf {
			seen, ok := member[abstract]
			if !ok {
				return nil, errUnknownMembership(vname, abstract)
			}
			if !seen[vname] {
				seen[vname] = true
				possible[abstract] = append(possible[abstract], v)
			}
		}
	}

	for _, vname := range b.variantOrder {
		if !b.isMember(member, vname) {
			return nil, errOrphanVariant(vname)
		}
	}

	b.frozen = true
	return &Registry{
		abstracts: b.abstracts,
		variants:  b.variants,
		possible:  possible,
		member:    member,
		order:     b.abstractOrder,
	}, nil
}

func (b *Builder) isMember(member map[string]map[string]bool, variant string) bool {
	for _, seen := range member {
		if seen[variant] {
			return true
		}
	}
	return false
}

// mustMutable panics when the builder was already frozen. Mutating build-time
// state after Freeze is a programming error, not a recoverable condition.
func (b *Builder) mustMutable(op string) {
	if b.frozen {
		panic(strategy.Errorf("registry: %s called after Freeze", op))
	}
}
