package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/wayfarer/pkg/engine"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnswerProduced is emitted after a run completes with a
	// cited answer.
	EventTypeAnswerProduced = "wayfarer.answer.produced"
)

// AnswerProducedEvent is a transport-neutral event payload for a completed
// question-answering run.
type AnswerProducedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Question          string         `json:"question"`
	TranslatedQuery   string         `json:"translated_query,omitempty"`
	Answer            string         `json:"answer"`
	Sources           []AnswerSource `json:"sources,omitempty"`
	RetrievalAttempts int            `json:"retrieval_attempts"`
	DurationMs        int64          `json:"duration_ms"`
}

// AnswerSource identifies one passage the answer drew on.
type AnswerSource struct {
	ID        string `json:"id"`
	SourceURL string `json:"source_url,omitempty"`
	Title     string `json:"title,omitempty"`
}

// NewAnswerProducedEvent builds the event payload from a completed run's
// final state.
func NewAnswerProducedEvent(s *engine.ConversationState, duration time.Duration) *AnswerProducedEvent {
	sources := make([]AnswerSource, 0, len(s.RetrievedDocs))
	for _, doc := range s.RetrievedDocs {
		sources = append(sources, AnswerSource{
			ID:        doc.ID,
			SourceURL: doc.SourceURL,
			Title:     doc.Title,
		})
	}

	return &AnswerProducedEvent{
		SchemaVersion:     SchemaVersionV1,
		EventType:         EventTypeAnswerProduced,
		EventID:           uuid.NewString(),
		EmittedAt:         time.Now().UTC(),
		Question:          s.PendingQuestion,
		TranslatedQuery:   s.TranslatedQuery,
		Answer:            s.LastAssistantMessage(),
		Sources:           sources,
		RetrievalAttempts: s.RetrievalAttempts,
		DurationMs:        duration.Milliseconds(),
	}
}
