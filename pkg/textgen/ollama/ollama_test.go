package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/textgen"
	"github.com/wayfarerhq/wayfarer/pkg/textgen/ollama"
)

func TestOllamaGenerator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Generator Suite")
}

var _ = Describe("Generator", func() {
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

	newServer := func(handler http.HandlerFunc) *ollama.Generator {
		server = httptest.NewServer(handler)
		g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL, Model: "test-model"})
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	It("sends the prompt as a single user message and returns the reply", func() {
		g := newServer(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))

			var body map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			Expect(body["model"]).To(Equal("test-model"))
			Expect(body["stream"]).To(BeFalse())

			messages := body["messages"].([]any)
			Expect(messages).To(HaveLen(1))

			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": "繁體中文翻譯"},
				"done":    true,
			})
		})

		out, err := g.Generate(ctx, "translate this")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("繁體中文翻譯"))
	})

	It("wraps non-200 responses in ErrGeneration", func() {
		g := newServer(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		})

		_, err := g.Generate(ctx, "anything")
		Expect(err).To(MatchError(textgen.ErrGeneration))
	})

	It("surfaces in-band provider errors", func() {
		g := newServer(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"error": "out of memory"})
		})

		_, err := g.Generate(ctx, "anything")
		Expect(err).To(MatchError(textgen.ErrGeneration))
		Expect(err.Error()).To(ContainSubstring("out of memory"))
	})

	It("respects context cancellation", func() {
		g := newServer(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": "late"},
			})
		})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := g.Generate(cancelled, "anything")
		Expect(err).To(HaveOccurred())
	})
})
