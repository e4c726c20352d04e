package datastoreflex

import (
	"encoding/json"
	"sort"
	"strings"
)

// Column config entity layout. The config lives in Datastore itself, one
// entity per namespace.
const (
	configKindSuffix = "_config"
	configKeyName    = "column"
	configValueField = "value"
)

// PropertyConfig tells how to derive the bucket object path of one
// configured property from sibling entity fields. Immutable once
// registered.
type PropertyConfig struct {
	BucketPath   string   `json:"bucket_path"`
	PathElements []string `json:"path_elements"`
}

// Config maps property names to their PropertyConfig.
type Config map[string]PropertyConfig

// Validate checks the config shape. It performs no I/O.
func (cfg Config) Validate() error {
	for name, pc := range cfg {
		if name == "" {
			return &ConfigError{Reason: "empty property name"}
		}
		if pc.BucketPath == "" {
			return &ConfigError{Property: name, Reason: "empty bucket_path"}
		}
		if _, err := PathScheme(pc.BucketPath); err != nil {
			return err
		}
		if len(pc.PathElements) == 0 {
			return &ConfigError{Property: name, Reason: "empty path_elements"}
		}
		for _, field := range pc.PathElements {
			if field == "" {
				return &ConfigError{Property: name, Reason: "empty field name in path_elements"}
			}
		}
	}
	return nil
}

// PropertyNames returns the configured property names, sorted. Iteration
// over the map itself is randomized; redirection walks properties in this
// order so bucket I/O stays deterministic.
func (cfg Config) PropertyNames() []string {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg Config) clone() Config {
	merged := make(Config, len(cfg))
	for name, pc := range cfg {
		merged[name] = pc
	}
	return merged
}

func encodeConfig(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", &ConfigError{Reason: err.Error()}
	}
	return string(b), nil
}

func decodeConfig(s string) (Config, error) {
	cfg := Config{}
	if strings.TrimSpace(s) == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(s), &cfg); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	return cfg, nil
}
