package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	SchemaDocument  = ast.SchemaDocument
	Definition      = ast.Definition
	DefinitionList  = ast.DefinitionList
	Directive       = ast.Directive
	DirectiveList   = ast.DirectiveList
	Argument        = ast.Argument
	ArgumentList    = ast.ArgumentList
	Value           = ast.Value
	FieldDefinition = ast.FieldDefinition
	Position        = ast.Position
)

type DefinitionKind = ast.DefinitionKind

type ValueKind = ast.ValueKind

const (
	Object    DefinitionKind = ast.Object
	Interface DefinitionKind = ast.Interface
	Union     DefinitionKind = ast.Union
	Scalar    DefinitionKind = ast.Scalar
	Enum      DefinitionKind = ast.Enum

	StringValue ValueKind = ast.StringValue
)
