// Package ingestcmder provides the ingest command for refreshing the
// document corpus.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/config"
	embeddingutils "github.com/wayfarerhq/wayfarer/pkg/embeddings/utils"
	indexutils "github.com/wayfarerhq/wayfarer/pkg/index/utils"
	"github.com/wayfarerhq/wayfarer/pkg/ingest"
	trackerutils "github.com/wayfarerhq/wayfarer/pkg/ingest/tracker/utils"
	"github.com/wayfarerhq/wayfarer/pkg/logger"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

type IngestCommander struct {
	sources        string
	trackerDriver  string
	trackerDSN     string
	indexProvider  string
	indexTarget    string
	collection     string
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	watch          bool
	debug          bool
	logger         *zap.Logger
}

const ingestLongDesc string = `Refresh the document corpus from the configured source URLs.

Each source page is fetched, hashed, and skipped when unchanged since the
last run. Changed pages are split into chunks, embedded, and upserted into
the document index.

With --watch, the command keeps running and refreshes on the configured
interval instead of exiting after one pass.`

const ingestShortDesc string = "Refresh the document corpus"

var ingestFlags = []string{
	config.FlagSources,
	config.FlagTracker,
	config.FlagTrackerDSN,
	config.FlagIndexProvider,
	config.FlagIndexTarget,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

func NewIngestCmd() *cobra.Command {
	cmder := &IngestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, ingestFlags)

			return cmder.run(config.FromViper(v))
		},
	}

	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Keep running and refresh on the configured interval")
	config.AddStringFlag(cmd, config.Flags, config.FlagSources, &cmder.sources)
	config.AddStringFlag(cmd, config.Flags, config.FlagTracker, &cmder.trackerDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagTrackerDSN, &cmder.trackerDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexProvider, &cmder.indexProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexTarget, &cmder.indexTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)

	return cmd
}

func (c *IngestCommander) run(cfg *config.Config) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	if len(cfg.Ingest.Sources) == 0 {
		return fmt.Errorf("no ingest sources configured; set ingest.sources or pass --sources")
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Dimensions:   int(cfg.Index.Dimensions),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	idx, err := indexutils.NewDriver(&indexutils.NewDriverOpts{
		ProviderType: cfg.Index.Provider,
		Target:       cfg.Index.Target,
		Collection:   cfg.Index.Collection,
		Dimensions:   int(cfg.Index.Dimensions),
		APIKey:       os.Getenv("QDRANT_API_KEY"),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating index driver: %w", err)
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := idx.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensuring index collection: %w", err)
	}

	trk, err := trackerutils.NewDriver(cfg.Ingest.Tracker, cfg.Ingest.TrackerDSN)
	if err != nil {
		return fmt.Errorf("creating change tracker: %w", err)
	}
	defer trk.Close()

	pool, err := ingest.NewPool(&ingest.PoolConfig{
		Embedder:        embedder,
		Index:           idx,
		SparseWeighting: sparse.Weighting(cfg.Retrieval.SparseWeighting),
		ChunkSize:       cfg.Ingest.ChunkSize,
		Logger:          c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	fetcher := ingest.NewFetcher(cfg.Ingest.RatePerSecond, 0)
	pipeline := ingest.NewPipeline(cfg.Ingest.Sources, fetcher, trk, pool, c.logger)

	if c.watch {
		interval := time.Duration(cfg.Ingest.IntervalMinutes) * time.Minute
		c.logger.Info("watching sources",
			zap.Int("sources", len(cfg.Ingest.Sources)),
			zap.Duration("interval", interval),
		)

		err := ingest.NewScheduler(pipeline, interval, c.logger).Run(ctx)
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	enqueued, err := pipeline.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("refresh pass: %w", err)
	}

	c.logger.Info("ingest finished", zap.Int("documents", enqueued))
	return nil
}
