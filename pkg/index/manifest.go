package index

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// Manifest is a declarative list of vector indexes, typically loaded from a
// YAML file checked in next to the deployment config:
//
//	indexes:
//	  - name: document_description_vector
//	    label: Document
//	    property: description_embedding
//	    dimension: 1536
//	    similarity: cosine
type Manifest struct {
	Indexes []types.IndexDescriptor `yaml:"indexes"`
}

// LoadManifest reads and validates a manifest file. Descriptors without a
// name get NormalizeIndexName(label, property).
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse index manifest %s: %w", path, err)
	}

	for i := range m.Indexes {
		if m.Indexes[i].Name == "" {
			m.Indexes[i].Name = NormalizeIndexName(m.Indexes[i].Label, m.Indexes[i].Property)
		}
		if err := m.Indexes[i].Validate(); err != nil {
			return nil, fmt.Errorf("index manifest %s: %w", path, err)
		}
	}
	return &m, nil
}

// EnsureFromManifest creates every index the manifest declares. Indexes that
// already exist with the same definition are left alone; a conflicting
// definition aborts with ErrIndexConflict before later entries are applied.
func (m *Manager) EnsureFromManifest(ctx context.Context, path string) error {
	manifest, err := LoadManifest(path)
	if err != nil {
		return err
	}
	for _, desc := range manifest.Indexes {
		if err := m.CreateIndex(ctx, desc); err != nil {
			return err
		}
	}
	m.logger.Info("applied index manifest", "path", path, "indexes", len(manifest.Indexes))
	return nil
}
