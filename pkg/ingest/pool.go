package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/embeddings"
	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 64
)

// PoolConfig is the configuration options for the ingest worker pool.
type PoolConfig struct {
	// Embedder generates the dense representation per chunk.
	Embedder embeddings.Embedder

	// Index receives the upserted chunks.
	Index index.Driver

	// SparseWeighting selects the sparse term weighting scheme.
	SparseWeighting sparse.Weighting

	// ChunkSize is the target chunk length in runes.
	ChunkSize int

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel.
	QueueSize uint

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Pool chunks, embeds, and upserts fetched documents asynchronously so the
// fetch loop never blocks on embedding latency.
type Pool struct {
	config *PoolConfig
	queue  chan *Document
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates the pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.SparseWeighting == "" {
		c.SparseWeighting = sparse.WeightingFrequency
	}

	p := &Pool{
		config: c,
		queue:  make(chan *Document, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := uint(0); i < c.NumWorkers; i++ {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a document for processing. Returns false when the queue
// is full and the document was dropped.
func (p *Pool) Enqueue(doc *Document) bool {
	select {
	case p.queue <- doc:
		p.logger.Debug("document queued", zap.String("url", doc.URL))
		return true
	default:
		p.logger.Error("document dropped, queue full", zap.String("url", doc.URL))
		return false
	}
}

// Close signals workers to stop and waits for in-flight documents to drain.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingest worker started", zap.Uint("worker_id", id))

	for doc := range p.queue {
		p.processDocument(doc)
	}

	p.logger.Debug("ingest worker stopped", zap.Uint("worker_id", id))
}

// processDocument chunks the document and upserts the embedded chunks.
// Errors are logged but not surfaced so one bad document never stalls the
// rest of the batch.
func (p *Pool) processDocument(doc *Document) {
	ctx := context.Background()

	passages := SplitDocument(doc, p.config.ChunkSize)
	chunks := make([]index.Chunk, 0, len(passages))

	for _, passage := range passages {
		dense, err := p.config.Embedder.Embed(ctx, ContextualText(passage))
		if err != nil {
			p.logger.Warn("failed to embed chunk",
				zap.String("id", passage.ID),
				zap.Error(err),
			)
			continue
		}

		chunks = append(chunks, index.Chunk{
			Passage: passage,
			Dense:   dense,
			Sparse:  sparse.Encode(passage.Text, p.config.SparseWeighting),
		})
	}

	if len(chunks) == 0 {
		p.logger.Warn("no chunks produced", zap.String("url", doc.URL))
		return
	}

	if err := p.config.Index.Upsert(ctx, chunks); err != nil {
		p.logger.Error("failed to upsert chunks",
			zap.String("url", doc.URL),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("document indexed",
		zap.String("url", doc.URL),
		zap.Int("chunks", len(chunks)),
	)
}
