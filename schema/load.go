package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a schema from a YAML file.
func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	return Parse(b)
}

func Parse(b []byte) (*Schema, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	if err := s.Prepare(); err != nil {
		return nil, err
	}

	return &s, nil
}

// RelationName strips the discriminator suffix from a navigation property
// name, e.g. "Author_Person" becomes "Author".
func RelationName(name string) string {
	if i := strings.LastIndex(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}
