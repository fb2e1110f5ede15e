package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	switch cfg.Recognizer.Backend {
	case BackendNative:
		if cfg.Recognizer.ModelsDir == "" {
			errs = append(errs, errors.New("recognizer.models_dir is required for the native backend"))
		}
	case BackendServer:
		if cfg.Recognizer.ServerURL == "" {
			errs = append(errs, errors.New("recognizer.server_url is required for the server backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("recognizer.backend %q is invalid; valid values: native, server", cfg.Recognizer.Backend))
	}

	if cfg.LLM.APIKey == "" {
		slog.Warn("llm.api_key is empty; phrases come from the builtin tables only")
	} else if cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required when llm.api_key is set"))
	}

	return errors.Join(errs...)
}
