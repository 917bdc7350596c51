package config

import (
	"fmt"
	"os"

	"ipo_automation/application/workflow"

	"gopkg.in/yaml.v3"
)

// LoadCatalog returns the default selector catalog with any lists from the
// YAML file at path replacing their defaults. An empty path means defaults.
func LoadCatalog(path string) (workflow.Catalog, error) {
	catalog := workflow.DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("failed to read selector file: %w", err)
	}

	var override workflow.Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return catalog, fmt.Errorf("failed to parse selector file %s: %w", path, err)
	}
	return catalog.Merge(override), nil
}
