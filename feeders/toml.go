package feeders

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/golobby/config/v3/pkg/feeder"
)

// Toml reads configuration from a TOML file.
type Toml struct {
	feeder.Toml
}

// NewToml creates a feeder for the TOML file at path.
func NewToml(path string) Toml {
	return Toml{feeder.Toml{Path: path}}
}

// FeedSection extracts a single top-level table of the file into target.
func (t Toml) FeedSection(section string, target any) error {
	var all map[string]any
	if err := t.Feed(&all); err != nil {
		return fmt.Errorf("reading toml: %w", err)
	}
	value, exists := all[section]
	if !exists {
		return nil
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("encoding section %q: %w", section, err)
	}
	if err := toml.Unmarshal(buf.Bytes(), target); err != nil {
		return fmt.Errorf("decoding section %q: %w", section, err)
	}
	return nil
}
