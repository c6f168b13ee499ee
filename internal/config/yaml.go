package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (FileConfig, error) {
	var doc struct {
		Practice  PracticeConfig `yaml:"practice"`
		Operators yaml.Node      `yaml:"operators"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return FileConfig{}, err
	}
	cfg := FileConfig{Practice: doc.Practice}
	if doc.Operators.Kind == 0 {
		return FileConfig{}, ErrNoSections
	}
	if doc.Operators.Kind != yaml.MappingNode {
		return FileConfig{}, fmt.Errorf("operators must be a mapping of named sections")
	}
	// Mapping nodes keep document order as key/value pairs.
	content := doc.Operators.Content
	for i := 0; i+1 < len(content); i += 2 {
		name := content[i].Value
		var raw rawSection
		if err := content[i+1].Decode(&raw); err != nil {
			return FileConfig{}, fmt.Errorf("section %q: %w", name, err)
		}
		section, err := raw.section(name)
		if err != nil {
			return FileConfig{}, err
		}
		cfg.Sections = append(cfg.Sections, section)
	}
	if len(cfg.Sections) == 0 {
		return FileConfig{}, ErrNoSections
	}
	return cfg, nil
}
