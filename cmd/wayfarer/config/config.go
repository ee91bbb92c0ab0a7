// Package configcmder provides the config command for managing persistent
// wayfarer configuration stored in the .wayfarer/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent wayfarer configuration.

Configuration is stored as config.toml in the .wayfarer/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, corpus.language, corpus.answer_language, profile.required,
  graph.max_retrieval_attempts,
  retrieval.dense_k, retrieval.sparse_k, retrieval.result_size,
  retrieval.rrf_constant, retrieval.sparse_weighting,
  index.provider, index.target, index.collection, index.dimensions,
  embedding.provider, embedding.target, embedding.model,
  llm.provider, llm.target, llm.model, llm.timeout_seconds,
  ingest.sources, ingest.interval_minutes, ingest.chunk_size,
  ingest.rate_per_second, ingest.tracker, ingest.tracker_dsn,
  eventstream.enabled, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  wayfarer config set <key> <value>    Set a configuration value
  wayfarer config get <key>            Get a configuration value
  wayfarer config list                 List all configuration values

Examples:
  wayfarer config set llm.model llama3.1
  wayfarer config set index.target localhost:6334
  wayfarer config get corpus.language
  wayfarer config list`

const configShortDesc string = "Manage persistent wayfarer configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
