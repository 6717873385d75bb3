package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the YAML config at path. An empty path falls
// back to DefaultConfigFile; a missing file, at that or any other path,
// is not an error — Load returns Defaults() instead, since this server is usable with no
// config file at all (every feature degrades gracefully per spec §7).
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Defaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects a configuration that can never produce a usable
// interpreter connection.
func Validate(cfg Config) error {
	switch cfg.MatlabConnectionTiming {
	case TimingOnStart, TimingOnDemand, TimingNever, "":
	default:
		return fmt.Errorf("invalid matlabConnectionTiming: %q", cfg.MatlabConnectionTiming)
	}

	if cfg.MatlabConnectionTiming == TimingNever && cfg.IndexWorkspace {
		// Not fatal: workspace indexing simply becomes a permanent no-op
		// per spec §4.5 ("no-op if ... interpreter disconnected").
	}

	return nil
}

// Save writes cfg back to path as YAML, validating first.
func Save(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("cannot save invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
