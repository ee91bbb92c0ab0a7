package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent wayfarer configuration stored as
// config.toml in the .wayfarer/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	Corpus      CorpusConfig      `toml:"corpus"`
	Profile     ProfileConfig     `toml:"profile"`
	Graph       GraphConfig       `toml:"graph"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Index       IndexConfig       `toml:"index"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	Ingest      IngestConfig      `toml:"ingest"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// CorpusConfig holds corpus and response language settings.
type CorpusConfig struct {
	Language       string `toml:"language,omitempty"`
	AnswerLanguage string `toml:"answer_language,omitempty"`
}

// ProfileConfig holds the profile gate settings.
type ProfileConfig struct {
	Required []string `toml:"required,omitempty"`
}

// GraphConfig holds workflow graph settings.
type GraphConfig struct {
	MaxRetrievalAttempts int `toml:"max_retrieval_attempts,omitempty"`
}

// RetrievalConfig holds hybrid retrieval and fusion settings.
type RetrievalConfig struct {
	DenseK          int     `toml:"dense_k,omitempty"`
	SparseK         int     `toml:"sparse_k,omitempty"`
	ResultSize      int     `toml:"result_size,omitempty"`
	RRFConstant     float64 `toml:"rrf_constant,omitempty"`
	SparseWeighting string  `toml:"sparse_weighting,omitempty"`
}

// IndexConfig holds document index settings.
type IndexConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// LLMConfig holds text generation provider settings.
type LLMConfig struct {
	Provider       string `toml:"provider,omitempty"`
	Target         string `toml:"target,omitempty"`
	Model          string `toml:"model,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// IngestConfig holds corpus refresh settings.
type IngestConfig struct {
	Sources         []string `toml:"sources,omitempty"`
	IntervalMinutes int      `toml:"interval_minutes,omitempty"`
	ChunkSize       int      `toml:"chunk_size,omitempty"`
	RatePerSecond   float64  `toml:"rate_per_second,omitempty"`
	Tracker         string   `toml:"tracker,omitempty"`
	TrackerDSN      string   `toml:"tracker_dsn,omitempty"`
}

// EventStreamConfig holds answer event publishing settings.
type EventStreamConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func intSetter(target func(c *Config) *int, key string) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target(c) = n
		return nil
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure. List-valued
// keys use comma-separated strings on the get/set surface.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"corpus.language": {
		get: func(c *Config) string { return c.Corpus.Language },
		set: func(c *Config, v string) error { c.Corpus.Language = v; return nil },
	},
	"corpus.answer_language": {
		get: func(c *Config) string { return c.Corpus.AnswerLanguage },
		set: func(c *Config, v string) error { c.Corpus.AnswerLanguage = v; return nil },
	},
	"profile.required": {
		get: func(c *Config) string { return strings.Join(c.Profile.Required, ",") },
		set: func(c *Config, v string) error { c.Profile.Required = splitList(v); return nil },
	},
	"graph.max_retrieval_attempts": {
		get: func(c *Config) string { return strconv.Itoa(c.Graph.MaxRetrievalAttempts) },
		set: intSetter(func(c *Config) *int { return &c.Graph.MaxRetrievalAttempts }, "graph.max_retrieval_attempts"),
	},
	"retrieval.dense_k": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.DenseK) },
		set: intSetter(func(c *Config) *int { return &c.Retrieval.DenseK }, "retrieval.dense_k"),
	},
	"retrieval.sparse_k": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.SparseK) },
		set: intSetter(func(c *Config) *int { return &c.Retrieval.SparseK }, "retrieval.sparse_k"),
	},
	"retrieval.result_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.ResultSize) },
		set: intSetter(func(c *Config) *int { return &c.Retrieval.ResultSize }, "retrieval.result_size"),
	},
	"retrieval.rrf_constant": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Retrieval.RRFConstant, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.rrf_constant: %w", err)
			}
			c.Retrieval.RRFConstant = f
			return nil
		},
	},
	"retrieval.sparse_weighting": {
		get: func(c *Config) string { return c.Retrieval.SparseWeighting },
		set: func(c *Config, v string) error { c.Retrieval.SparseWeighting = v; return nil },
	},
	"index.provider": {
		get: func(c *Config) string { return c.Index.Provider },
		set: func(c *Config, v string) error { c.Index.Provider = v; return nil },
	},
	"index.target": {
		get: func(c *Config) string { return c.Index.Target },
		set: func(c *Config, v string) error { c.Index.Target = v; return nil },
	},
	"index.collection": {
		get: func(c *Config) string { return c.Index.Collection },
		set: func(c *Config, v string) error { c.Index.Collection = v; return nil },
	},
	"index.dimensions": {
		get: func(c *Config) string {
			if c.Index.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Index.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for index.dimensions: %w", err)
			}
			c.Index.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.LLM.TimeoutSeconds) },
		set: intSetter(func(c *Config) *int { return &c.LLM.TimeoutSeconds }, "llm.timeout_seconds"),
	},
	"ingest.sources": {
		get: func(c *Config) string { return strings.Join(c.Ingest.Sources, ",") },
		set: func(c *Config, v string) error { c.Ingest.Sources = splitList(v); return nil },
	},
	"ingest.interval_minutes": {
		get: func(c *Config) string { return strconv.Itoa(c.Ingest.IntervalMinutes) },
		set: intSetter(func(c *Config) *int { return &c.Ingest.IntervalMinutes }, "ingest.interval_minutes"),
	},
	"ingest.chunk_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Ingest.ChunkSize) },
		set: intSetter(func(c *Config) *int { return &c.Ingest.ChunkSize }, "ingest.chunk_size"),
	},
	"ingest.rate_per_second": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Ingest.RatePerSecond, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.rate_per_second: %w", err)
			}
			c.Ingest.RatePerSecond = f
			return nil
		},
	},
	"ingest.tracker": {
		get: func(c *Config) string { return c.Ingest.Tracker },
		set: func(c *Config, v string) error { c.Ingest.Tracker = v; return nil },
	},
	"ingest.tracker_dsn": {
		get: func(c *Config) string { return c.Ingest.TrackerDSN },
		set: func(c *Config, v string) error { c.Ingest.TrackerDSN = v; return nil },
	},
	"eventstream.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.EventStream.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.enabled: %w", err)
			}
			c.EventStream.Enabled = b
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = splitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}
