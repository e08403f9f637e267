package sdl

import (
	"context"
)

type SchemaID string

type SchemaMetadata struct {
	ID       SchemaID
	Name     string
	FilePath string
}

// Discovery enumerates SDL sources and serves their content.
type Discovery interface {
	ListSchemas(ctx context.Context) ([]*SchemaMetadata, error)
	ReadSchema(ctx context.Context, id SchemaID) (string, error)
}
