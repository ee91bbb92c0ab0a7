package inmemory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/index/inmemory"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

func TestInmemoryIndex(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Inmemory Index Suite")
}

func chunk(id, text string, dense []float32) index.Chunk {
	return index.Chunk{
		Passage: index.Passage{ID: id, Text: text, SourceURL: "https://example.org/" + id},
		Dense:   dense,
		Sparse:  sparse.Encode(text, sparse.WeightingFrequency),
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
	})

	It("replaces chunks on upsert with the same ID", func() {
		Expect(driver.Upsert(ctx, []index.Chunk{chunk("a", "old text", []float32{1, 0})})).To(Succeed())
		Expect(driver.Upsert(ctx, []index.Chunk{chunk("a", "new text", []float32{1, 0})})).To(Succeed())
		Expect(driver.Len()).To(Equal(1))
	})

	Describe("HybridQuery", func() {
		BeforeEach(func() {
			Expect(driver.Upsert(ctx, []index.Chunk{
				chunk("visa", "work visa application", []float32{1, 0, 0}),
				chunk("permit", "residence permit renewal", []float32{0, 1, 0}),
				chunk("citizen", "citizenship requirements", []float32{0, 0, 1}),
			})).To(Succeed())
		})

		It("ranks dense hits by cosine similarity", func() {
			dense, _, err := driver.HybridQuery(ctx, []float32{0.9, 0.1, 0}, nil, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(dense).NotTo(BeEmpty())
			Expect(dense[0].ID).To(Equal("visa"))
		})

		It("ranks sparse hits by term overlap", func() {
			terms := sparse.Encode("residence permit", sparse.WeightingFrequency)
			_, sparseHits, err := driver.HybridQuery(ctx, nil, terms, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(sparseHits).NotTo(BeEmpty())
			Expect(sparseHits[0].ID).To(Equal("permit"))
		})

		It("truncates both lists to k", func() {
			dense, _, err := driver.HybridQuery(ctx, []float32{0.5, 0.5, 0.5}, nil, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(dense)).To(BeNumerically("<=", 2))
		})

		It("returns identical rankings for identical queries", func() {
			terms := sparse.Encode("visa permit", sparse.WeightingFrequency)
			d1, s1, err := driver.HybridQuery(ctx, []float32{0.3, 0.3, 0.3}, terms, 5)
			Expect(err).NotTo(HaveOccurred())
			d2, s2, err := driver.HybridQuery(ctx, []float32{0.3, 0.3, 0.3}, terms, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(d2).To(Equal(d1))
			Expect(s2).To(Equal(s1))
		})

		It("returns empty lists for empty representations", func() {
			dense, sparseHits, err := driver.HybridQuery(ctx, nil, nil, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(dense).To(BeEmpty())
			Expect(sparseHits).To(BeEmpty())
		})
	})
})
