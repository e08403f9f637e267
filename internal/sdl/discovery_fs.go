package sdl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanpama/typegraph/internal/registry"
)

// FileSystemDiscovery implements Discovery for .graphql files under a root
// directory. The schema ID is the file name without its extension.
type FileSystemDiscovery struct {
	filePaths map[SchemaID]string
	metas     map[SchemaID]*SchemaMetadata
}

// NewFileSystemDiscovery creates a new FileSystemDiscovery for the given root directory
func NewFileSystemDiscovery(rootDir string) (*FileSystemDiscovery, error) {
	discovery := &FileSystemDiscovery{
		filePaths: make(map[SchemaID]string),
		metas:     make(map[SchemaID]*SchemaMetadata),
	}

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != ".graphql" {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}

		name := strings.TrimSuffix(d.Name(), ".graphql")
		id := SchemaID(name)
		discovery.filePaths[id] = path
		discovery.metas[id] = &SchemaMetadata{
			ID:       id,
			Name:     name,
			FilePath: relPath,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	return discovery, nil
}

// ListSchemas returns the metadata of the schemas discovered in the filesystem
func (d *FileSystemDiscovery) ListSchemas(ctx context.Context) ([]*SchemaMetadata, error) {
	metas := make([]*SchemaMetadata, 0, len(d.metas))
	for _, meta := range d.metas {
		metas = append(metas, meta)
	}
	return metas, nil
}

// ReadSchema reads the SDL content for a given schema
func (d *FileSystemDiscovery) ReadSchema(ctx context.Context, id SchemaID) (string, error) {
	fp, ok := d.filePaths[id]
	if !ok {
		return "", fmt.Errorf("schema %q not found", id)
	}
	content, err := os.ReadFile(fp)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %q: %w", id, err)
	}
	return string(content), nil
}

// LoadDir is a convenience function that creates a FileSystemDiscovery and
// translates the discovered schemas into registry declarations.
func LoadDir(ctx context.Context, rootDir string) (*registry.Builder, error) {
	discovery, err := NewFileSystemDiscovery(rootDir)
	if err != nil {
		return nil, err
	}
	return Load(ctx, discovery)
}
