package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/embeddings"
	"github.com/wayfarerhq/wayfarer/pkg/embeddings/ollama"
)

func TestOllamaEmbedder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var (
		server *httptest.Server
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	newServer := func(handler http.HandlerFunc) *ollama.Embedder {
		server = httptest.NewServer(handler)
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("returns the first embedding from the response", func() {
		e := newServer(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))

			var body map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			Expect(body["input"]).To(Equal("工作簽證"))

			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1, 0.2, 0.3}},
			})
		})

		vec, err := e.Embed(ctx, "工作簽證")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))
	})

	It("wraps non-200 responses in ErrEmbedding", func() {
		e := newServer(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exhausted", http.StatusTooManyRequests)
		})

		_, err := e.Embed(ctx, "anything")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("429"))
	})

	It("errors when the response carries no embeddings", func() {
		e := newServer(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
		})

		_, err := e.Embed(ctx, "anything")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("validates configured dimensionality", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1, 0.2}},
			})
		}))
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL, Dimensions: 768})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(ctx, "anything")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("768"))
	})

	It("respects context cancellation", func() {
		e := newServer(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1}},
			})
		})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := e.Embed(cancelled, "anything")
		Expect(err).To(HaveOccurred())
	})
})
