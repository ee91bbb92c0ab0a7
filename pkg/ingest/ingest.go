// Package ingest refreshes the immigration document corpus: it fetches the
// configured source pages, skips those whose content hash is unchanged,
// chunks the rest, and embeds and upserts the chunks into the document
// index through an asynchronous worker pool.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker"
)

// Pipeline ties the fetcher, change tracker, and worker pool into one
// refresh pass over the configured sources.
type Pipeline struct {
	sources []string
	fetcher *Fetcher
	tracker tracker.Driver
	pool    *Pool
	logger  *zap.Logger
}

// NewPipeline wires a refresh pipeline over the given collaborators.
func NewPipeline(sources []string, fetcher *Fetcher, trk tracker.Driver, pool *Pool, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		sources: sources,
		fetcher: fetcher,
		tracker: trk,
		pool:    pool,
		logger:  logger,
	}
}

// RunOnce fetches every source, enqueuing those that changed since the last
// pass. It returns the number of documents enqueued and the joined errors
// of the sources that failed; one bad source never aborts the pass.
func (p *Pipeline) RunOnce(ctx context.Context) (int, error) {
	var errs []error
	enqueued := 0

	for _, url := range p.sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		changed, err := p.processSource(ctx, url)
		if err != nil {
			p.logger.Warn("source failed",
				zap.String("url", url),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		if changed {
			enqueued++
		}
	}

	p.logger.Info("refresh pass finished",
		zap.Int("sources", len(p.sources)),
		zap.Int("enqueued", enqueued),
		zap.Int("failed", len(errs)),
	)

	return enqueued, errors.Join(errs...)
}

// processSource fetches one URL and enqueues it when its hash differs from
// the tracked one. Reports whether the document was enqueued.
func (p *Pipeline) processSource(ctx context.Context, url string) (bool, error) {
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return false, err
	}

	last, err := p.tracker.LastHash(ctx, url)
	if err != nil && !errors.Is(err, tracker.ErrNotSeen) {
		return false, err
	}
	if last == doc.Hash {
		p.logger.Debug("source unchanged", zap.String("url", url))
		return false, nil
	}

	if !p.pool.Enqueue(doc) {
		return false, fmt.Errorf("ingest queue full")
	}

	err = p.tracker.Mark(ctx, tracker.Record{
		URL:     url,
		Hash:    doc.Hash,
		Updated: time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
