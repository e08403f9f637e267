package sdl

import (
	"context"
	"sort"

	"github.com/hanpama/typegraph/internal/language"
	"github.com/hanpama/typegraph/internal/registry"
)

// DiscriminantDirective marks an object type with a static discriminant
// literal: `type Song @discriminant(value: "Track")`.
const DiscriminantDirective = "discriminant"

type builder struct {
	discovery Discovery
	docs      []*language.SchemaDocument

	objects    map[string]*language.Definition
	interfaces map[string]*language.Definition
	unions     map[string]*language.Definition
	others     map[string]language.DefinitionKind

	abstractOrder []string
	objectOrder   []string
	discriminants map[string]string
	unionMembers  map[string]bool

	violations []*Violation
}

// Load parses the discovered SDL sources and translates them into registry
// declarations: union and interface definitions become abstract types, object
// types belonging to one become variants, and @discriminant directives become
// static discriminant literals. Declarations loaded from SDL carry no code;
// the caller binds resolution hooks on the returned builder.
func Load(ctx context.Context, disc Discovery) (*registry.Builder, error) {
	b := &builder{
		discovery:     disc,
		objects:       make(map[string]*language.Definition),
		interfaces:    make(map[string]*language.Definition),
		unions:        make(map[string]*language.Definition),
		others:        make(map[string]language.DefinitionKind),
		discriminants: make(map[string]string),
		unionMembers:  make(map[string]bool),
	}
	if err := b.build(ctx); err != nil {
		return nil, err
	}
	return b.declare()
}

func (b *builder) build(ctx context.Context) error {
	metas, err := b.discovery.ListSchemas(ctx)
	if err != nil {
		return err
	}
	// Schemas are processed in ID order so that declaration order, and with it
	// predicate tie-breaking, does not depend on discovery enumeration order.
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })

	for _, meta := range metas {
		src, err := b.discovery.ReadSchema(ctx, meta.ID)
		if err != nil {
			return err
		}
		doc, err := language.ParseSchema(meta.FilePath, src)
		if err != nil {
			return err
		}
		b.docs = append(b.docs, doc)
	}

	for _, doc := range b.docs {
		for _, node := range doc.Definitions {
			b.collectDefinition(node)
		}
	}
	for _, doc := range b.docs {
		for _, node := range doc.Extensions {
			b.mergeExtension(node)
		}
	}

	b.checkMemberships()
	b.collectDiscriminants()

	if len(b.violations) > 0 {
		return ValidationError(b.violations)
	}
	return nil
}

func (b *builder) collectDefinition(node *language.Definition) {
	if b.defined(node.Name) {
		b.addViolation(violationDuplicateTypeName(node.Name, node.Position))
		return
	}
	switch node.Kind {
	case language.Object:
		b.objects[node.Name] = node
		b.objectOrder = append(b.objectOrder, node.Name)
	case language.Interface:
		b.interfaces[node.Name] = node
		b.abstractOrder = append(b.abstractOrder, node.Name)
	case language.Union:
		b.unions[node.Name] = node
		b.abstractOrder = append(b.abstractOrder, node.Name)
	default:
		// Scalars, enums and inputs carry no resolution structure. They are
		// tracked so that kind mismatches can be reported precisely.
		b.others[node.Name] = node.Kind
	}
}

// mergeExtension folds `extend` definitions into the base definition they
// target. Only membership information is merged: union members and
// implemented interfaces.
func (b *builder) mergeExtension(node *language.Definition) {
	switch node.Kind {
	case language.Object:
		base, ok := b.objects[node.Name]
		if !ok {
			b.addViolation(violationExtensionOfUnknownType(node.Name, node.Position))
			return
		}
		base.Interfaces = append(base.Interfaces, node.Interfaces...)
	case language.Interface:
		base, ok := b.interfaces[node.Name]
		if !ok {
			b.addViolation(violationExtensionOfUnknownType(node.Name, node.Position))
			return
		}
		base.Interfaces = append(base.Interfaces, node.Interfaces...)
	case language.Union:
		base, ok := b.unions[node.Name]
		if !ok {
			b.addViolation(violationExtensionOfUnknownType(node.Name, node.Position))
			return
		}
		base.Types = append(base.Types, node.Types...)
	default:
	}
}

func (b *builder) defined(name string) bool {
	if _, ok := b.objects[name]; ok {
		return true
	}
	if _, ok := b.interfaces[name]; ok {
		return true
	}
	if _, ok := b.unions[name]; ok {
		return true
	}
	_, ok := b.others[name]
	return ok
}

func (b *builder) checkMemberships() {
	for _, name := range b.abstractOrder {
		node, ok := b.unions[name]
		if !ok {
			continue
		}
		for _, member := range node.Types {
			if _, ok := b.objects[member]; ok {
				b.unionMembers[member] = true
				continue
			}
			if kind, found := b.kindOf(member); found {
				b.addViolation(violationUnionMemberNotObject(member, name, kind, node.Position))
			} else {
				b.addViolation(violationUnionMemberNotFound(member, name, node.Position))
			}
		}
	}

	for _, name := range b.objectOrder {
		node := b.objects[name]
		for _, interfaceName := range node.Interfaces {
			iface, ok := b.interfaces[interfaceName]
			if !ok {
				if _, found := b.kindOf(interfaceName); found {
					b.addViolation(violationNotAnInterface(interfaceName, node.Position))
				} else {
					b.addViolation(violationInterfaceNotFound(interfaceName, name, node.Position))
				}
				continue
			}
			// Objects must spell out transitively implemented interfaces.
			for _, required := range iface.Interfaces {
				if !containsName(node.Interfaces, required) {
					b.addViolation(violationMissingTransitiveInterface(name, required, interfaceName, node.Position))
				}
			}
		}
	}
}

func (b *builder) collectDiscriminants() {
	for _, name := range b.objectOrder {
		node := b.objects[name]
		literal, present := b.discriminantLiteral(node)
		if !present {
			continue
		}
		if len(node.Interfaces) == 0 && !b.unionMembers[name] {
			b.addViolation(violationDanglingDiscriminant(name, node.Position))
			continue
		}
		b.discriminants[name] = literal
	}

	for _, name := range b.abstractOrder {
		node, kind := b.abstractNode(name)
		for _, dir := range node.Directives {
			if dir.Name == DiscriminantDirective {
				b.addViolation(violationMisplacedDiscriminant(kind, name, dir.Position))
			}
		}
	}
}

func (b *builder) abstractNode(name string) (*language.Definition, language.DefinitionKind) {
	if node, ok := b.unions[name]; ok {
		return node, language.Union
	}
	return b.interfaces[name], language.Interface
}

// discriminantLiteral reads the value argument of an @discriminant directive.
// The second return reports whether the directive is present at all.
func (b *builder) discriminantLiteral(node *language.Definition) (string, bool) {
	for _, dir := range node.Directives {
		if dir.Name != DiscriminantDirective {
			continue
		}
		var literal string
		var hasValue bool
		for _, arg := range dir.Arguments {
			switch arg.Name {
			case "value":
				literal = b.getStringValue(arg.Value)
				hasValue = true
			default:
				b.addViolation(violationUnknownDiscriminantArgument(arg.Name, dir.Position))
			}
		}
		if !hasValue {
			b.addViolation(violationDiscriminantMissingValue(node.Name, dir.Position))
		}
		return literal, true
	}
	return "", false
}

func (b *builder) getStringValue(node *language.Value) string {
	if node.Kind != language.StringValue {
		b.addViolation(violationExpectedString(node.Position))
		return ""
	}
	return node.Raw
}

// declare registers the collected definitions. Abstract types go first in
// definition encounter order, then the objects that belong to at least one of
// them. Plain object types with no membership are not resolution concerns and
// are skipped.
func (b *builder) declare() (*registry.Builder, error) {
	rb := registry.NewBuilder()

	for _, name := range b.abstractOrder {
		var def registry.AbstractType
		if node, ok := b.unions[name]; ok {
			def = registry.AbstractType{Name: name, Kind: registry.KindUnion, Variants: node.Types}
		} else {
			def = registry.AbstractType{Name: name, Kind: registry.KindInterface}
		}
		if err := rb.RegisterAbstractType(def); err != nil {
			return nil, err
		}
	}

	for _, name := range b.objectOrder {
		node := b.objects[name]
		if len(node.Interfaces) == 0 && !b.unionMembers[name] {
			continue
		}
		v := registry.Variant{
			Name:         name,
			Discriminant: b.discriminants[name],
			MemberOf:     node.Interfaces,
		}
		if err := rb.RegisterVariant(v); err != nil {
			return nil, err
		}
	}

	return rb, nil
}

func (b *builder) addViolation(v ...*Violation) {
	b.violations = append(b.violations, v...)
}

func (b *builder) kindOf(name string) (language.DefinitionKind, bool) {
	if _, ok := b.objects[name]; ok {
		return language.Object, true
	}
	if _, ok := b.interfaces[name]; ok {
		return language.Interface, true
	}
	if _, ok := b.unions[name]; ok {
		return language.Union, true
	}
	if kind, ok := b.others[name]; ok {
		return kind, true
	}
	return "", false
}

func containsName(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}
