package sdl

import (
	"context"
	"fmt"
)

type InMemorySchema struct {
	Name    string
	Content string
}

// InMemoryDiscovery is a test implementation of Discovery that stores data in memory
type InMemoryDiscovery struct {
	metas    map[SchemaID]*SchemaMetadata
	contents map[SchemaID]string
}

// NewInMemoryDiscovery creates a new InMemoryDiscovery instance
func NewInMemoryDiscovery(schemas []InMemorySchema) *InMemoryDiscovery {
	discovery := &InMemoryDiscovery{
		metas:    make(map[SchemaID]*SchemaMetadata),
		contents: make(map[SchemaID]string),
	}

	for _, s := range schemas {
		id := SchemaID(s.Name)
		discovery.metas[id] = &SchemaMetadata{
			ID:       id,
			Name:     s.Name,
			FilePath: s.Name + ".graphql",
		}
		discovery.contents[id] = s.Content
	}
	return discovery
}

// ListSchemas implements Discovery interface
func (d *InMemoryDiscovery) ListSchemas(ctx context.Context) ([]*SchemaMetadata, error) {
	metas := make([]*SchemaMetadata, 0, len(d.metas))
	for _, meta := range d.metas {
		metas = append(metas, meta)
	}
	return metas, nil
}

// ReadSchema implements Discovery interface
func (d *InMemoryDiscovery) ReadSchema(ctx context.Context, id SchemaID) (string, error) {
	content, exists := d.contents[id]
	if !exists {
		return "", fmt.Errorf("schema %q not found", id)
	}
	return content, nil
}
