package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FindConfigFile returns the path of the default config file in the working
// directory, or an error if it does not exist.
func FindConfigFile() (string, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return "", fmt.Errorf("%s not found in current directory", DefaultConfigFile)
	}
	return DefaultConfigFile, nil
}

// LoadFile reads and parses the configuration from a YAML file, applies
// defaults for unset fields, and validates the result.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals config bytes, applies defaults, and validates. Decoding
// is strict: an unknown key is an error, so a misspelled component section
// cannot silently disable that component.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills unset fields with the values from Default().
// Component enabled flags are kept as written: an absent component section
// means disabled, matching how the stack toggles read in the file.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.ClusterName == "" {
		cfg.ClusterName = def.ClusterName
	}
	if cfg.KubeconfigPath == "" {
		cfg.KubeconfigPath = def.KubeconfigPath
	}
	if cfg.StepTimeout == 0 {
		cfg.StepTimeout = def.StepTimeout
	}
	if cfg.Stack.Monitoring.Enabled {
		if cfg.Stack.Monitoring.GrafanaAdminUser == "" {
			cfg.Stack.Monitoring.GrafanaAdminUser = def.Stack.Monitoring.GrafanaAdminUser
		}
		if cfg.Stack.Monitoring.RetentionDays == 0 {
			cfg.Stack.Monitoring.RetentionDays = def.Stack.Monitoring.RetentionDays
		}
	}
	if cfg.Stack.Events.Enabled && cfg.Stack.Events.WebhookPort == 0 {
		cfg.Stack.Events.WebhookPort = def.Stack.Events.WebhookPort
	}
	if cfg.Stack.Controller.Enabled && cfg.Stack.Controller.Image == "" {
		cfg.Stack.Controller.Image = def.Stack.Controller.Image
	}
	if cfg.Bridges == nil {
		cfg.Bridges = DefaultBridges(cfg)
	}
}

// WriteFile marshals the configuration and writes it to path.
func WriteFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
