// Package qdrant provides a Qdrant-backed document index driver over the
// gRPC client, using named dense and sparse vectors on one collection.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

const (
	// DefaultCollectionName is the default collection holding the corpus.
	DefaultCollectionName = "immigration"

	// DefaultDimensions matches the default embedding model.
	DefaultDimensions = 768

	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// Driver implements index.Driver against a Qdrant instance.
type Driver struct {
	client     *qdrant.Client
	collection string
	dimensions uint64
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant gRPC host. Required.
	Host string

	// Port is the Qdrant gRPC port (conventionally 6334).
	Port int

	// APIKey authenticates against Qdrant cloud; empty for local.
	APIKey string

	// UseTLS enables transport security.
	UseTLS bool

	// CollectionName defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the dense vector size. Defaults to DefaultDimensions.
	Dimensions int
}

// NewDriver creates a new Qdrant index driver.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	dimensions := c.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   c.Port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrConnection, err)
	}

	logger.Info("connected to qdrant",
		zap.String("host", c.Host),
		zap.Int("port", c.Port),
		zap.String("collection", collection),
	)

	return &Driver{
		client:     client,
		collection: collection,
		dimensions: uint64(dimensions),
		logger:     logger,
	}, nil
}

// EnsureCollection creates the corpus collection with named dense and
// sparse vector spaces when it does not exist yet.
func (d *Driver) EnsureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection: %v", index.ErrConnection, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			denseVectorName: {
				Size:     d.dimensions,
				Distance: qdrant.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			sparseVectorName: {},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %v", index.ErrConnection, err)
	}

	d.logger.Info("created qdrant collection",
		zap.String("collection", d.collection),
		zap.Uint64("dimensions", d.dimensions),
	)

	return nil
}

// Upsert stores chunks with their dense and sparse vectors.
func (d *Driver) Upsert(ctx context.Context, chunks []index.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		indices, values := splitTerms(chunk.Sparse)

		// Qdrant point IDs must be numeric or UUID; derive a stable UUID
		// from the chunk ID so re-ingesting a source replaces its points.
		pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunk.ID)).String()

		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewID(pointID),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				denseVectorName:  qdrant.NewVectorDense(chunk.Dense),
				sparseVectorName: qdrant.NewVectorSparse(indices, values),
			}),
			Payload: qdrant.NewValueMap(map[string]any{
				"id":      chunk.ID,
				"text":    chunk.Text,
				"url":     chunk.SourceURL,
				"title":   chunk.Title,
				"section": chunk.Section,
			}),
		})
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", index.ErrUpsert, err)
	}

	d.logger.Debug("upserted chunks",
		zap.Int("count", len(chunks)),
	)

	return nil
}

// HybridQuery issues the dense and sparse top-K retrievals independently
// and returns both ranked lists, preserving Qdrant's score ordering.
func (d *Driver) HybridQuery(ctx context.Context, dense []float32, terms []sparse.Term, k int) ([]index.Hit, []index.Hit, error) {
	if k <= 0 {
		k = 5
	}

	denseHits, err := d.query(ctx, qdrant.NewQueryDense(dense), denseVectorName, k)
	if err != nil {
		return nil, nil, err
	}

	indices, values := splitTerms(terms)
	sparseHits, err := d.query(ctx, qdrant.NewQuerySparse(indices, values), sparseVectorName, k)
	if err != nil {
		return nil, nil, err
	}

	return denseHits, sparseHits, nil
}

func (d *Driver) query(ctx context.Context, query *qdrant.Query, using string, k int) ([]index.Hit, error) {
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          query,
		Using:          qdrant.PtrOf(using),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s query: %v", index.ErrQuery, using, err)
	}

	hits := make([]index.Hit, 0, len(points))
	for _, point := range points {
		hits = append(hits, index.Hit{
			Passage: passageFromPayload(point.Payload),
			Score:   point.Score,
		})
	}

	return hits, nil
}

func passageFromPayload(payload map[string]*qdrant.Value) index.Passage {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	return index.Passage{
		ID:        get("id"),
		Text:      get("text"),
		SourceURL: get("url"),
		Title:     get("title"),
		Section:   get("section"),
	}
}

func splitTerms(terms []sparse.Term) ([]uint32, []float32) {
	indices := make([]uint32, len(terms))
	values := make([]float32, len(terms))
	for i, t := range terms {
		indices[i] = t.Index
		values[i] = t.Weight
	}
	return indices, values
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ index.Driver = (*Driver)(nil)
