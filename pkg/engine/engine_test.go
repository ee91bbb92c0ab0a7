package engine_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/engine"
	"github.com/wayfarerhq/wayfarer/pkg/graph"
	"github.com/wayfarerhq/wayfarer/pkg/index"
	testutils "github.com/wayfarerhq/wayfarer/pkg/utils/test"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

func passages(ids ...string) []index.Hit {
	hits := make([]index.Hit, len(ids))
	for i, id := range ids {
		hits[i] = index.Hit{
			Passage: index.Passage{
				ID:        id,
				Text:      "passage " + id,
				SourceURL: "https://www.immigration.gov.tw/" + id,
			},
		}
	}
	return hits
}

var _ = Describe("Engine", func() {
	var (
		ctx       context.Context
		generator *testutils.MockGenerator
		embedder  *testutils.MockEmbedder
		idx       *testutils.MockIndex
		eng       *engine.Engine
		events    []engine.Event
		emit      engine.EmitFunc

		fullProfile map[string]string
	)

	countType := func(t engine.EventType) int {
		n := 0
		for _, ev := range events {
			if ev.Type == t {
				n++
			}
		}
		return n
	}

	BeforeEach(func() {
		ctx = context.Background()
		generator = testutils.NewMockGenerator()
		embedder = testutils.NewMockEmbedder()
		idx = testutils.NewMockIndex()

		// Script the three generator calls by distinctive prompt fragments:
		// translation, grading, and synthesis.
		generator.Respond("翻譯", "外國人如何申請工作許可？")
		generator.Respond("是否足夠", "足夠回答")
		generator.Respond("台灣移民署", "You need a work permit before starting work [1].")

		idx.DenseHits = passages("a", "b", "c")
		idx.SparseHits = passages("b", "d")

		events = nil
		emit = func(ev engine.Event) { events = append(events, ev) }

		fullProfile = map[string]string{
			"nationality": "加拿大",
			"visa_type":   "居留簽證",
		}

		eng = engine.New(engine.Config{}, generator, embedder, idx, nil)
	})

	Describe("profile gating", func() {
		It("suspends with a prompt for every missing field and touches nothing else", func() {
			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", nil, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Suspended))
			Expect(result.Outcome).To(Equal(engine.SuspendMissingProfile))
			Expect(s.MissingProfileFields).To(Equal([]string{"nationality", "visa_type"}))

			Expect(idx.Queries).To(BeZero())
			Expect(embedder.Calls).To(BeEmpty())

			prompt := s.LastAssistantMessage()
			Expect(prompt).To(ContainSubstring("請問您的國籍是什麼？"))
			Expect(prompt).To(ContainSubstring("您目前持有什麼簽證？"))

			Expect(countType(engine.EventAnswer)).To(BeZero())
			Expect(countType(engine.EventError)).To(BeZero())
			Expect(events[len(events)-1]).To(Equal(engine.Event{
				Type:    engine.EventStatus,
				Content: prompt,
			}))
		})

		It("treats whitespace-only values as missing", func() {
			profile := map[string]string{"nationality": "  ", "visa_type": "居留簽證"}
			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", profile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Suspended))
			Expect(s.MissingProfileFields).To(Equal([]string{"nationality"}))
		})

		It("does not revisit the gate once the profile is complete", func() {
			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(s.MissingProfileFields).To(BeEmpty())
		})
	})

	Describe("a successful run", func() {
		It("translates, retrieves once, and answers with citations", func() {
			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(result.Outcome).To(Equal(engine.OutcomeDone))

			Expect(s.TranslatedQuery).To(Equal("外國人如何申請工作許可？"))
			Expect(embedder.Calls).To(ConsistOf("外國人如何申請工作許可？"))
			Expect(s.RetrievalAttempts).To(Equal(1))
			Expect(len(s.RetrievedDocs)).To(BeNumerically("<=", engine.DefaultResultSize))

			// Document "b" appears in both ranked lists and must lead.
			Expect(s.RetrievedDocs[0].ID).To(Equal("b"))

			Expect(s.LastAssistantMessage()).To(ContainSubstring("[1]"))
		})

		It("numbers the synthesis context to match the fused ranking", func() {
			_, _, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)
			Expect(err).NotTo(HaveOccurred())

			synthesis := generator.Prompts[len(generator.Prompts)-1]
			Expect(synthesis).To(ContainSubstring("[1] passage b"))
			Expect(synthesis).To(ContainSubstring("[2] passage a"))
			Expect(synthesis).To(ContainSubstring("English"))
		})

		It("emits progress statuses followed by exactly one answer", func() {
			_, _, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)
			Expect(err).NotTo(HaveOccurred())

			Expect(countType(engine.EventAnswer)).To(Equal(1))
			Expect(countType(engine.EventError)).To(BeZero())

			last := events[len(events)-1]
			Expect(last.Type).To(Equal(engine.EventAnswer))
			Expect(last.Content).To(Equal("You need a work permit before starting work [1]."))

			for _, ev := range events[:len(events)-1] {
				Expect(ev.Type).To(Equal(engine.EventStatus))
			}
		})
	})

	Describe("the grade-retrieve loop", func() {
		BeforeEach(func() {
			generator.Respond("是否足夠", "無法回答")
		})

		It("retries with widened K and stops at the attempt cap", func() {
			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))

			Expect(s.RetrievalAttempts).To(Equal(engine.DefaultMaxRetrievalAttempts))
			Expect(idx.Queries).To(Equal(3))
			Expect(idx.LastK).To(Equal(engine.DefaultDenseK * 3))

			// Exhausting the retry budget still yields exactly one answer.
			Expect(countType(engine.EventAnswer)).To(Equal(1))
			Expect(countType(engine.EventError)).To(BeZero())
		})

		It("replaces retrieved docs wholesale on each attempt", func() {
			s, _, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(len(s.RetrievedDocs)).To(BeNumerically("<=", engine.DefaultResultSize))
		})

		It("degrades a grading failure to an insufficient verdict", func() {
			generator.FailOn = "是否足夠"

			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(s.Insufficient).To(BeTrue())
			Expect(s.RetrievalAttempts).To(Equal(engine.DefaultMaxRetrievalAttempts))
			Expect(countType(engine.EventAnswer)).To(Equal(1))
		})
	})

	Describe("infrastructure failures", func() {
		It("fails terminally when translation errors", func() {
			generator.FailOn = "翻譯"

			_, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal(engine.FailTranslation))
			Expect(idx.Queries).To(BeZero())
		})

		It("emits exactly one retrieval error and no answer when embedding fails", func() {
			embedder.FailOn = "外國人如何申請工作許可？"

			s, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal(engine.FailRetrieval))
			Expect(s.RetrievalAttempts).To(BeZero())

			Expect(countType(engine.EventError)).To(Equal(1))
			Expect(countType(engine.EventAnswer)).To(BeZero())
			Expect(events[len(events)-1].Content).To(HavePrefix(engine.FailRetrieval + ":"))
		})

		It("rejects a query that translates to nothing", func() {
			generator.Respond("翻譯", "   ")

			_, result, err := eng.Run(ctx, "   ", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal(engine.FailEmptyQuery))
		})

		It("fails terminally when synthesis errors", func() {
			generator.FailOn = "台灣移民署"

			_, result, err := eng.Run(ctx, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal(engine.FailGeneration))
			Expect(countType(engine.EventAnswer)).To(BeZero())
			Expect(countType(engine.EventError)).To(Equal(1))
		})
	})

	Describe("cancellation", func() {
		It("abandons the run without a terminal event", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, result, err := eng.Run(cancelled, "Can I work in Taiwan?", fullProfile, emit)

			Expect(err).To(MatchError(context.Canceled))
			Expect(result.Kind).To(Equal(graph.Abandoned))
			Expect(countType(engine.EventAnswer)).To(BeZero())
			Expect(countType(engine.EventError)).To(BeZero())
		})
	})
})
