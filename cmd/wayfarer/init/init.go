// Package initcmder provides the init command for initializing a local
// .wayfarer directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/wayfarer/pkg/config"
)

const (
	dirName = ".wayfarer"
)

const initLongDesc string = `Initialize a new .wayfarer/ directory in the current working directory.

Creates a local .wayfarer/ directory with a default config.toml. A local
directory takes precedence over the default ~/.wayfarer/ directory for
configuration and the saved user profile.

This is useful for maintaining separate wayfarer state per project or directory.

Examples:
  wayfarer init`

const initShortDesc string = "Initialize a local .wayfarer/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .wayfarer directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Initialized .wayfarer directory: %s\n", dir)
	return nil
}
