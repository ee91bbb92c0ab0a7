package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --llm-target
// on both "wayfarer serve" and "wayfarer ask").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIListen      = "api-listen"
	FlagIndexProvider  = "index-provider"
	FlagIndexTarget    = "index-target"
	FlagCollection     = "collection"
	FlagEmbeddingProv  = "embedding-provider"
	FlagEmbeddingTgt   = "embedding-target"
	FlagEmbeddingModel = "embedding-model"
	FlagLLMProvider    = "llm-provider"
	FlagLLMTarget      = "llm-target"
	FlagLLMModel       = "llm-model"
	FlagTracker        = "tracker"
	FlagTrackerDSN     = "tracker-dsn"
	FlagSources        = "sources"
)

// Flags is the shared flag registry for the wayfarer commands.
var Flags = FlagSet{
	FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "address for the API server to listen on",
	},
	FlagIndexProvider: {
		Name:        "index-provider",
		ViperKey:    "index.provider",
		Description: "document index provider (qdrant or memory)",
	},
	FlagIndexTarget: {
		Name:        "index-target",
		ViperKey:    "index.target",
		Description: "document index host:port",
	},
	FlagCollection: {
		Name:        "collection",
		ViperKey:    "index.collection",
		Description: "document index collection name",
	},
	FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "embedding provider",
	},
	FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "embedding provider base URL",
	},
	FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "embedding model name",
	},
	FlagLLMProvider: {
		Name:        "llm-provider",
		ViperKey:    "llm.provider",
		Description: "text generation provider (ollama or openai)",
	},
	FlagLLMTarget: {
		Name:        "llm-target",
		ViperKey:    "llm.target",
		Description: "text generation provider base URL",
	},
	FlagLLMModel: {
		Name:        "llm-model",
		ViperKey:    "llm.model",
		Description: "text generation model name",
	},
	FlagTracker: {
		Name:        "tracker",
		ViperKey:    "ingest.tracker",
		Description: "ingest change tracker driver (sqlite, postgres, or memory)",
	},
	FlagTrackerDSN: {
		Name:        "tracker-dsn",
		ViperKey:    "ingest.tracker_dsn",
		Description: "ingest change tracker DSN or file path",
	},
	FlagSources: {
		Name:        "sources",
		ViperKey:    "ingest.sources",
		Description: "comma-separated source URLs to ingest",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}
