package sdl

import (
	"fmt"

	"github.com/hanpama/typegraph/internal/language"
)

// Common reusable violation constructors (template helpers)
// NOTE: Keep messages stable to avoid breaking snapshot tests.

func violationDuplicateTypeName(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Type %q is defined more than once", typeName),
		pos,
	)
}

func violationUnionMemberNotFound(memberName, unionName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Type %q not found for union %q", memberName, unionName),
		pos,
	)
}

func violationUnionMemberNotObject(memberName, unionName string, kind language.DefinitionKind, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Union member %q must be an Object type, but got %s", memberName, string(kind)),
		pos,
	)
}

func violationInterfaceNotFound(interfaceName, objectName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Interface %q not found for object %q", interfaceName, objectName),
		pos,
	)
}

func violationNotAnInterface(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Type %q is not an interface", typeName),
		pos,
	)
}

func violationMissingTransitiveInterface(objectName, missingName, viaName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Object %q must also implement interface %q (required by interface %q)",
			objectName, missingName, viaName),
		pos,
	)
}

func violationMisplacedDiscriminant(kind language.DefinitionKind, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Directive @discriminant is only valid on Object types, found on %s %q", string(kind), typeName),
		pos,
	)
}

func violationDiscriminantMissingValue(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Directive @discriminant on %q requires a value argument", typeName),
		pos,
	)
}

func violationUnknownDiscriminantArgument(arg string, pos *language.Position) *Violation {
	return violationWithPosition(
		"Unknown argument '"+arg+"' in @discriminant directive",
		pos,
	)
}

func violationDanglingDiscriminant(objectName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Object %q declares @discriminant but is not a member of any union or interface", objectName),
		pos,
	)
}

func violationExtensionOfUnknownType(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Cannot extend unknown type %q", typeName),
		pos,
	)
}

func violationExpectedString(pos *language.Position) *Violation {
	return violationWithPosition("Expected string value", pos)
}
