package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/wayfarer/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Writes the value for the given key to the config.toml file stored in the
.wayfarer/ directory, creating the file if needed. Keys use dotted
notation matching the TOML section structure. List-valued keys take a
comma-separated string.

Examples:
  wayfarer config set llm.model llama3.1
  wayfarer config set profile.required nationality,visa_type
  wayfarer config set eventstream.brokers broker-1:9092,broker-2:9092`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Printf("Set %s = %q\n", key, value)
	return nil
}
