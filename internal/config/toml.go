package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

//go:embed default.toml
var defaultTOML string

// ErrNoSections is returned when a config defines no operator sections.
var ErrNoSections = errors.New("config defines no [operators.<name>] sections")

// FileConfig represents a loaded configuration file.
type FileConfig struct {
	Practice PracticeConfig
	Sections []Section
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Number *int  `toml:"number" yaml:"number"`
	Port   *int  `toml:"port" yaml:"port"`
	Web    *bool `toml:"web" yaml:"web"`
}

// Section is one named operator template in file order.
type Section struct {
	Name     string
	Operator model.OperatorConfig
}

// Operators returns the templates of all sections in file order.
func (c FileConfig) Operators() []model.OperatorConfig {
	out := make([]model.OperatorConfig, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = s.Operator
	}
	return out
}

type rawSection struct {
	Operator              *string `toml:"operator" yaml:"operator"`
	VariableNum           *int    `toml:"variable_num" yaml:"variable_num"`
	VariableMin           *int    `toml:"variable_min" yaml:"variable_min"`
	VariableMax           *int    `toml:"variable_max" yaml:"variable_max"`
	VariableDecimalPoints *int    `toml:"variable_decimal_points" yaml:"variable_decimal_points"`
	ResultDecimalPoints   *int    `toml:"result_decimal_points" yaml:"result_decimal_points"`
}

func (r rawSection) section(name string) (Section, error) {
	missing := func(key string) (Section, error) {
		return Section{}, fmt.Errorf("section %q: missing key %q", name, key)
	}
	switch {
	case r.Operator == nil:
		return missing("operator")
	case r.VariableNum == nil:
		return missing("variable_num")
	case r.VariableMin == nil:
		return missing("variable_min")
	case r.VariableMax == nil:
		return missing("variable_max")
	case r.VariableDecimalPoints == nil:
		return missing("variable_decimal_points")
	case r.ResultDecimalPoints == nil:
		return missing("result_decimal_points")
	}
	op := model.OperatorConfig{
		Operator:              model.Operator(strings.TrimSpace(*r.Operator)),
		VariableNum:           *r.VariableNum,
		VariableMin:           *r.VariableMin,
		VariableMax:           *r.VariableMax,
		VariableDecimalPoints: *r.VariableDecimalPoints,
		ResultDecimalPoints:   *r.ResultDecimalPoints,
	}
	if err := op.Validate(); err != nil {
		return Section{}, fmt.Errorf("section %q: %w", name, err)
	}
	return Section{Name: name, Operator: op}, nil
}

// LoadConfig reads a TOML or YAML config. An empty path loads the built-in default.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return DefaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	default:
		cfg, err = decodeTOML(string(data))
	}
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() (FileConfig, error) {
	return decodeTOML(defaultTOML)
}

// DefaultConfigTemplate returns the text of the built-in configuration.
func DefaultConfigTemplate() string {
	return defaultTOML
}

func decodeTOML(data string) (FileConfig, error) {
	var doc struct {
		Practice  PracticeConfig        `toml:"practice"`
		Operators map[string]rawSection `toml:"operators"`
	}
	md, err := toml.Decode(data, &doc)
	if err != nil {
		return FileConfig{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	cfg := FileConfig{Practice: doc.Practice}
	seen := map[string]bool{}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "operators" || seen[key[1]] {
			continue
		}
		seen[key[1]] = true
		section, err := doc.Operators[key[1]].section(key[1])
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
