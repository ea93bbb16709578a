// Package knowledge discovers, fetches, and indexes the portal's help
// documents into a knowledge base.
package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the versioned description of the document corpus: the fixed
// category set, each category's folder, and the static fallback file list
// used when directory listing is unavailable.
type Manifest struct {
	Categories []ManifestCategory `yaml:"categories"`
}

// ManifestCategory describes one document category.
type ManifestCategory struct {
	Name   string   `yaml:"name"`
	Folder string   `yaml:"folder"`
	Files  []string `yaml:"files"`
}

// LoadManifest reads and parses the manifest file at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Categories) == 0 {
		return nil, fmt.Errorf("manifest has no categories")
	}
	return &m, nil
}
