package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Models: []string{"whisper"},
		Backends: map[string]BackendConfig{
			"whisper": {
				Kind:        KindScript,
				Accelerator: true,
				Options: map[string]interface{}{
					"model_size": "large-v3",
					"device":     "cuda",
				},
			},
			"parakeet": {
				Kind:        KindScript,
				Accelerator: true,
				Options: map[string]interface{}{
					"model_name": "nvidia/parakeet-tdt-0.6b-v3",
					"device":     "cuda",
				},
			},
			"canary": {
				Kind:        KindScript,
				Accelerator: true,
				Options: map[string]interface{}{
					"model_name": "nvidia/canary-1b",
					"device":     "cuda",
				},
			},
		},
		Acquisition: AcquisitionConfig{
			VideoQuality: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
		Consensus: ConsensusConfig{Enabled: true},
	}
}

// Load reads a YAML file on top of Default. A missing file yields the
// defaults; an unreadable or malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		defaults := cfg.Backends
		cfg.Backends = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		backends, err := mergeBackends(defaults, data)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Backends = backends
	}

	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		cfg.Gemini.APIKeys = SplitList(keys)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// mergeBackends decodes every backends entry of data over its default, so a
// file only has to name the fields it changes. Options are merged per key.
func mergeBackends(defaults map[string]BackendConfig, data []byte) (map[string]BackendConfig, error) {
	var raw struct {
		Backends map[string]yaml.Node `yaml:"backends"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	merged := make(map[string]BackendConfig, len(defaults)+len(raw.Backends))
	for id, b := range defaults {
		merged[id] = b
	}
	for id, node := range raw.Backends {
		b := merged[id]
		options := make(map[string]interface{}, len(b.Options))
		for k, v := range b.Options {
			options[k] = v
		}
		b.Options = options
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("backends.%s: %w", id, err)
		}
		merged[id] = b
	}
	return merged, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
