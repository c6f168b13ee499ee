package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config file values.
const (
	EnvConfig = "ARITHMETICTRAINER_CONFIG"
	EnvNumber = "ARITHMETICTRAINER_NUMBER"
	EnvPort   = "ARITHMETICTRAINER_PORT"
)

// LoadDotEnv loads variables from a .env file without overriding the
// environment. Missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides practice settings from the environment.
func ApplyEnv(p *PracticeConfig) error {
	for _, item := range []struct {
		name   string
		target **int
	}{
		{EnvNumber, &p.Number},
		{EnvPort, &p.Port},
	} {
		v := os.Getenv(item.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", item.name, err)
		}
		*item.target = &n
	}
	return nil
}

// ResolveConfigPath picks the config file: explicit path, $ARITHMETICTRAINER_CONFIG,
// the XDG config file, then ./config.toml. An empty result selects the
// built-in default.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	candidates := []string{os.Getenv(EnvConfig), DefaultConfigPath()}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "config.toml"))
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}
