// Package config manages the persistent wayfarer configuration: a
// config.toml in the resolved .wayfarer/ directory, layered under
// environment variables and CLI flags via viper.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/wayfarerhq/wayfarer/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .wayfarer/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .wayfarer/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config
// with sane defaults. Fields explicitly set in the file override the
// defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg)

	return cfg, nil
}

// ParseConfigTOML decodes a config.toml payload.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version > CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (current is %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}

	if cfg.Corpus.Language == "" {
		cfg.Corpus.Language = defaults.Corpus.Language
	}
	if cfg.Corpus.AnswerLanguage == "" {
		cfg.Corpus.AnswerLanguage = defaults.Corpus.AnswerLanguage
	}

	if len(cfg.Profile.Required) == 0 {
		cfg.Profile.Required = defaults.Profile.Required
	}

	if cfg.Graph.MaxRetrievalAttempts == 0 {
		cfg.Graph.MaxRetrievalAttempts = defaults.Graph.MaxRetrievalAttempts
	}

	if cfg.Retrieval.DenseK == 0 {
		cfg.Retrieval.DenseK = defaults.Retrieval.DenseK
	}
	if cfg.Retrieval.SparseK == 0 {
		cfg.Retrieval.SparseK = defaults.Retrieval.SparseK
	}
	if cfg.Retrieval.ResultSize == 0 {
		cfg.Retrieval.ResultSize = defaults.Retrieval.ResultSize
	}
	if cfg.Retrieval.RRFConstant == 0 {
		cfg.Retrieval.RRFConstant = defaults.Retrieval.RRFConstant
	}
	if cfg.Retrieval.SparseWeighting == "" {
		cfg.Retrieval.SparseWeighting = defaults.Retrieval.SparseWeighting
	}

	if cfg.Index.Provider == "" {
		cfg.Index.Provider = defaults.Index.Provider
	}
	if cfg.Index.Target == "" {
		cfg.Index.Target = defaults.Index.Target
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = defaults.Index.Collection
	}
	if cfg.Index.Dimensions == 0 {
		cfg.Index.Dimensions = defaults.Index.Dimensions
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaults.Embedding.Provider
	}
	if cfg.Embedding.Target == "" {
		cfg.Embedding.Target = defaults.Embedding.Target
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaults.LLM.Provider
	}
	if cfg.LLM.Target == "" {
		cfg.LLM.Target = defaults.LLM.Target
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = defaults.LLM.TimeoutSeconds
	}

	if cfg.Ingest.IntervalMinutes == 0 {
		cfg.Ingest.IntervalMinutes = defaults.Ingest.IntervalMinutes
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = defaults.Ingest.ChunkSize
	}
	if cfg.Ingest.RatePerSecond == 0 {
		cfg.Ingest.RatePerSecond = defaults.Ingest.RatePerSecond
	}
	if cfg.Ingest.Tracker == "" {
		cfg.Ingest.Tracker = defaults.Ingest.Tracker
	}

	if cfg.EventStream.Topic == "" {
		cfg.EventStream.Topic = defaults.EventStream.Topic
	}
}

// SaveConfig persists the configuration to config.toml in the target
// .wayfarer/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}
