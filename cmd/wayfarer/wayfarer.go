// Package wayfarercmder
package wayfarercmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/wayfarerhq/wayfarer/cmd/wayfarer/ask"
	configcmder "github.com/wayfarerhq/wayfarer/cmd/wayfarer/config"
	ingestcmder "github.com/wayfarerhq/wayfarer/cmd/wayfarer/ingest"
	initcmder "github.com/wayfarerhq/wayfarer/cmd/wayfarer/init"
	servecmder "github.com/wayfarerhq/wayfarer/cmd/wayfarer/serve"
	versioncmder "github.com/wayfarerhq/wayfarer/cmd/version"
)

const wayfarerLongDesc string = `Wayfarer answers immigration questions over an indexed document corpus.

Run services using:
  wayfarer serve       Run the API server
  wayfarer ingest      Refresh the document corpus
  wayfarer ask         Ask a question against a running server`

const wayfarerShortDesc string = "Wayfarer - immigration Q&A over your document corpus"

func NewWayfarerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wayfarer",
		Short: wayfarerShortDesc,
		Long:  wayfarerLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .wayfarer/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
