package registry

import "context"

// TypeResolverFunc is the centralized resolution hook declared on an abstract
// type. It returns the concrete variant name for value. The context carries
// the enclosing query's cancellation signal; implementations that suspend
// must honor it.
type TypeResolverFunc func(ctx context.Context, value any) (string, error)

// PredicateFunc is a per-variant membership test: it reports whether value is
// an instance of that variant. The context carries the enclosing query's
// cancellation signal.
type PredicateFunc func(ctx context.Context, value any) (bool, error)

// Kind is the kind of an abstract type.
type Kind string

const (
	KindUnion     Kind = "UNION"
	KindInterface Kind = "INTERFACE"
)

// AbstractType declares a union or interface whose runtime values are one of
// several concrete variants.
type AbstractType struct {
	Name string
	Kind Kind

	// Variants lists the declared member variant names in declaration order.
	// Unions name their members here; interface membership usually arrives
	// through Variant.MemberOf instead. Both forms may be combined.
	Variants []string

	// ResolveType is the optional centralized resolution hook.
	ResolveType TypeResolverFunc
}

// Variant declares a concrete type that can appear as the runtime value of an
// abstract type. A variant is declared exactly once and may belong to several
// abstract types at once.
type Variant struct {
	Name string

	// IsTypeOf is the optional membership predicate.
	IsTypeOf PredicateFunc

	// Discriminant is the optional static discriminant literal this variant's
	// values are expected to carry.
	Discriminant string

	// MemberOf lists the abstract types this variant belongs to, in addition
	// to any abstract types naming it in their Variants list.
	MemberOf []string
}

// Registry is the frozen product of a Builder. All lookups are read-only and
// safe for unsynchronized concurrent use.
type Registry struct {
	abstracts map[string]*AbstractType
	variants  map[string]*Variant
	possible  map[string][]*Variant
	member    map[string]map[string]bool
	order     []string
}

// AbstractType returns the abstract type declaration, or nil when no such
// abstract type is registered.
func (r *Registry) AbstractType(name string) *AbstractType { return r.abstracts[name] }

// Variant returns the variant declaration, or nil when no such variant is
// registered.
func (r *Registry) Variant(name string) *Variant { return r.variants[name] }

// AbstractTypes returns all abstract types in registration order.
func (r *Registry) AbstractTypes() []*AbstractType {
	out := make([]*AbstractType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.abstracts[name])
	}
	return out
}

// PossibleTypes returns the variants of an abstract type in declaration
// order: the abstract type's declared Variants list first, then variants that
// declared membership, in registration order. The returned slice is shared;
// callers must not mutate it.
func (r *Registry) PossibleTypes(abstract string) []*Variant { return r.possible[abstract] }

// IsPossibleType reports whether variant is registered under abstract.
func (r *Registry) IsPossibleType(abstract, variant string) bool {
	return r.member[abstract][variant]
}

// PossibleTypeNames returns the variant names of an abstract type in
// declaration order.
func (r *Registry) PossibleTypeNames(abstract string) []string {
	vs := r.possible[abstract]
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return names
}
