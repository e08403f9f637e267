package resolve

// TypenameKey is the discriminant key of the surrounding wire protocol. The
// name is a hard external contract (the double-underscore typename key); it
// is consumed here as the field the default extractor reads, not owned by
// this package, and is not configurable.
const TypenameKey = "__typename"

// DiscriminantFunc extracts the explicit discriminant a runtime value
// carries, reporting false when it carries none. Hosts whose resolver output
// is not map-shaped supply their own extractor through WithDiscriminant.
type DiscriminantFunc func(value any) (string, bool)

// MapDiscriminant reads the TypenameKey entry of map-shaped values. It is the
// default extractor.
func MapDiscriminant(value any) (string, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[TypenameKey].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
