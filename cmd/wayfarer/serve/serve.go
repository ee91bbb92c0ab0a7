// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/api"
	"github.com/wayfarerhq/wayfarer/pkg/config"
	embeddingutils "github.com/wayfarerhq/wayfarer/pkg/embeddings/utils"
	"github.com/wayfarerhq/wayfarer/pkg/engine"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
	eventstreamutils "github.com/wayfarerhq/wayfarer/pkg/eventstream/utils"
	indexutils "github.com/wayfarerhq/wayfarer/pkg/index/utils"
	"github.com/wayfarerhq/wayfarer/pkg/logger"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
	textgenutils "github.com/wayfarerhq/wayfarer/pkg/textgen/utils"
)

type ServeCommander struct {
	listen         string
	indexProvider  string
	indexTarget    string
	collection     string
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	llmProvider    string
	llmTarget      string
	llmModel       string
	debug          bool
	logger         *zap.Logger
}

const serveLongDesc string = `Run the Wayfarer API server.

The server answers POST /chat requests by running the retrieval workflow
against the configured document index and language model, streaming
progress and the final cited answer as NDJSON.`

const serveShortDesc string = "Run the Wayfarer API server"

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagIndexProvider,
	config.FlagIndexTarget,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			return cmder.run(config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexProvider, &cmder.indexProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexTarget, &cmder.indexTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)

	return cmd
}

func (c *ServeCommander) run(cfg *config.Config) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	generator, err := textgenutils.NewGenerator(&textgenutils.NewGeneratorOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer generator.Close()

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

	if err := idx.EnsureCollection(context.Background()); err != nil {
		return fmt.Errorf("ensuring index collection: %w", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("creating eventstream publisher: %w", err)
	}
	defer publisher.Close()

	eng := engine.New(engine.Config{
		RequiredProfileFields: cfg.Profile.Required,
		CorpusLanguage:        cfg.Corpus.Language,
		AnswerLanguage:        cfg.Corpus.AnswerLanguage,
		MaxRetrievalAttempts:  cfg.Graph.MaxRetrievalAttempts,
		DenseK:                cfg.Retrieval.DenseK,
		SparseK:               cfg.Retrieval.SparseK,
		ResultSize:            cfg.Retrieval.ResultSize,
		RRFConstant:           cfg.Retrieval.RRFConstant,
		SparseWeighting:       sparse.Weighting(cfg.Retrieval.SparseWeighting),
	}, generator, embedder, idx, c.logger)

	server := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, eng, publisher, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func newPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	driver := ""
	if cfg.EventStream.Enabled {
		driver = "kafka"
	}
	return eventstreamutils.NewPublisher(driver, cfg.EventStream.Brokers, cfg.EventStream.Topic)
}
