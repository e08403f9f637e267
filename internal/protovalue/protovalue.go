// Package protovalue adapts protobuf runtime values to the resolution engine:
// a discriminant reader for the typename field convention and hook
// constructors for hosts whose values are protobuf messages.
package protovalue

import (
	"context"
	"fmt"

	"github.com/hanpama/typegraph/internal/registry"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// TypenameField is the message field carrying the concrete variant name.
const TypenameField = protoreflect.Name("typename")

// Discriminant reads the typename field of a protobuf message. It satisfies
// resolve.DiscriminantFunc; the field must be a string and set to a non-empty
// value to count as evidence.
func Discriminant(value any) (string, bool) {
	msg, ok := messageOf(value)
	if !ok {
		return "", false
	}
	fd := msg.Descriptor().Fields().ByName(TypenameField)
	if fd == nil || fd.Kind() != protoreflect.StringKind {
		return "", false
	}
	if !msg.Has(fd) {
		return "", false
	}
	name := msg.Get(fd).String()
	if name == "" {
		return "", false
	}
	return name, true
}

// MessageNameResolver returns a resolution hook inferring the variant from
// the message name by stripping a fixed suffix: with suffix "Source", a
// PhotoSource message resolves to Photo.
func MessageNameResolver(suffix string) registry.TypeResolverFunc {
	return func(ctx context.Context, value any) (string, error) {
		msg, ok := messageOf(value)
		if !ok {
			return "", fmt.Errorf("expected protobuf message, got %T", value)
		}
		name := string(msg.Descriptor().Name())
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)], nil
		}
		return "", fmt.Errorf("cannot infer concrete type from message %s", name)
	}
}

// FieldPresencePredicate reports whether the message carries the named field.
// It satisfies registry.PredicateFunc.
func FieldPresencePredicate(field string) registry.PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) {
		msg, ok := messageOf(value)
		if !ok {
			return false, nil
		}
		fd := msg.Descriptor().Fields().ByName(protoreflect.Name(field))
		if fd == nil {
			return false, nil
		}
		return msg.Has(fd), nil
	}
}

func messageOf(value any) (protoreflect.Message, bool) {
	switch v := value.(type) {
	case protoreflect.Message:
		return v, v != nil
	case proto.Message:
		if v == nil {
			return nil, false
		}
		return v.ProtoReflect(), true
	default:
		return nil, false
	}
}
