package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wayfarerhq/wayfarer/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the WAYFARER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (WAYFARER_API_LISTEN, WAYFARER_INDEX_TARGET, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: WAYFARER_API_LISTEN, WAYFARER_LLM_MODEL, etc.
	v.SetEnvPrefix("WAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper state so callers
// work with one typed struct instead of scattered key lookups.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Corpus: CorpusConfig{
			Language:       v.GetString("corpus.language"),
			AnswerLanguage: v.GetString("corpus.answer_language"),
		},
		Profile: ProfileConfig{
			Required: v.GetStringSlice("profile.required"),
		},
		Graph: GraphConfig{
			MaxRetrievalAttempts: v.GetInt("graph.max_retrieval_attempts"),
		},
		Retrieval: RetrievalConfig{
			DenseK:          v.GetInt("retrieval.dense_k"),
			SparseK:         v.GetInt("retrieval.sparse_k"),
			ResultSize:      v.GetInt("retrieval.result_size"),
			RRFConstant:     v.GetFloat64("retrieval.rrf_constant"),
			SparseWeighting: v.GetString("retrieval.sparse_weighting"),
		},
		Index: IndexConfig{
			Provider:   v.GetString("index.provider"),
			Target:     v.GetString("index.target"),
			Collection: v.GetString("index.collection"),
			Dimensions: v.GetUint("index.dimensions"),
		},
		Embedding: EmbeddingConfig{
			Provider: v.GetString("embedding.provider"),
			Target:   v.GetString("embedding.target"),
			Model:    v.GetString("embedding.model"),
		},
		LLM: LLMConfig{
			Provider:       v.GetString("llm.provider"),
			Target:         v.GetString("llm.target"),
			Model:          v.GetString("llm.model"),
			TimeoutSeconds: v.GetInt("llm.timeout_seconds"),
		},
		Ingest: IngestConfig{
			Sources:         v.GetStringSlice("ingest.sources"),
			IntervalMinutes: v.GetInt("ingest.interval_minutes"),
			ChunkSize:       v.GetInt("ingest.chunk_size"),
			RatePerSecond:   v.GetFloat64("ingest.rate_per_second"),
			Tracker:         v.GetString("ingest.tracker"),
			TrackerDSN:      v.GetString("ingest.tracker_dsn"),
		},
		EventStream: EventStreamConfig{
			Enabled: v.GetBool("eventstream.enabled"),
			Brokers: v.GetStringSlice("eventstream.brokers"),
			Topic:   v.GetString("eventstream.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Corpus
	v.SetDefault("corpus.language", d.Corpus.Language)
	v.SetDefault("corpus.answer_language", d.Corpus.AnswerLanguage)

	// Profile
	v.SetDefault("profile.required", d.Profile.Required)

	// Graph
	v.SetDefault("graph.max_retrieval_attempts", d.Graph.MaxRetrievalAttempts)

	// Retrieval
	v.SetDefault("retrieval.dense_k", d.Retrieval.DenseK)
	v.SetDefault("retrieval.sparse_k", d.Retrieval.SparseK)
	v.SetDefault("retrieval.result_size", d.Retrieval.ResultSize)
	v.SetDefault("retrieval.rrf_constant", d.Retrieval.RRFConstant)
	v.SetDefault("retrieval.sparse_weighting", d.Retrieval.SparseWeighting)

	// Index
	v.SetDefault("index.provider", d.Index.Provider)
	v.SetDefault("index.target", d.Index.Target)
	v.SetDefault("index.collection", d.Index.Collection)
	v.SetDefault("index.dimensions", d.Index.Dimensions)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)

	// LLM
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.target", d.LLM.Target)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout_seconds", d.LLM.TimeoutSeconds)

	// Ingest
	v.SetDefault("ingest.sources", d.Ingest.Sources)
	v.SetDefault("ingest.interval_minutes", d.Ingest.IntervalMinutes)
	v.SetDefault("ingest.chunk_size", d.Ingest.ChunkSize)
	v.SetDefault("ingest.rate_per_second", d.Ingest.RatePerSecond)
	v.SetDefault("ingest.tracker", d.Ingest.Tracker)
	v.SetDefault("ingest.tracker_dsn", d.Ingest.TrackerDSN)

	// Eventstream
	v.SetDefault("eventstream.enabled", d.EventStream.Enabled)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}
