package eventstream_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/engine"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
	"github.com/wayfarerhq/wayfarer/pkg/index"
)

func TestEventstream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Eventstream Suite")
}

var _ = Describe("Event", func() {
	It("builds the payload from a completed run's state", func() {
		s := engine.NewConversationState("Can I work in Taiwan?", nil)
		s.TranslatedQuery = "外國人如何申請工作許可？"
		s.RetrievalAttempts = 2
		s.RetrievedDocs = []index.Hit{
			{Passage: index.Passage{ID: "a", SourceURL: "https://www.immigration.gov.tw/a", Title: "工作許可"}},
		}
		s.Messages = append(s.Messages, engine.Message{
			Role:    engine.RoleAssistant,
			Content: "You need a work permit [1].",
		})

		event := eventstream.NewAnswerProducedEvent(s, 1500*time.Millisecond)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeAnswerProduced))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.Question).To(Equal("Can I work in Taiwan?"))
		Expect(event.Answer).To(Equal("You need a work permit [1]."))
		Expect(event.RetrievalAttempts).To(Equal(2))
		Expect(event.DurationMs).To(Equal(int64(1500)))
		Expect(event.Sources).To(HaveLen(1))
		Expect(event.Sources[0].SourceURL).To(Equal("https://www.immigration.gov.tw/a"))
	})

	It("marshals with expected top-level keys", func() {
		event := eventstream.AnswerProducedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeAnswerProduced,
			EventID:       "evt_123",
			EmittedAt:     time.Unix(1735689600, 0).UTC(),
			Question:      "q",
			Answer:        "a",
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("question"))
		Expect(got).To(HaveKey("answer"))
		Expect(got).To(HaveKey("retrieval_attempts"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeAnswerProduced).To(Equal("wayfarer.answer.produced"))
	})
})
