package feeders

import (
	"fmt"

	"github.com/golobby/config/v3/pkg/feeder"
	"gopkg.in/yaml.v3"
)

// Yaml reads configuration from a YAML file.
type Yaml struct {
	feeder.Yaml
}

// NewYaml creates a feeder for the YAML file at path.
func NewYaml(path string) Yaml {
	return Yaml{feeder.Yaml{Path: path}}
}

// FeedSection extracts a single top-level section of the file into target,
// so a module can load just its own settings block.
func (y Yaml) FeedSection(section string, target any) error {
	var all map[string]any
	if err := y.Feed(&all); err != nil {
		return fmt.Errorf("reading yaml: %w", err)
	}
	value, exists := all[section]
	if !exists {
		return nil
	}

	// Round-trip through the codec so nested types land correctly.
	raw, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding section %q: %w", section, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding section %q: %w", section, err)
	}
	return nil
}
