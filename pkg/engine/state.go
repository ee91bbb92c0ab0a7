package engine

import "github.com/wayfarerhq/wayfarer/pkg/index"

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the single unit of mutable context threaded through
// one run of the workflow graph. It is owned exclusively by that run and
// must never be shared across concurrent runs.
type ConversationState struct {
	// Messages is the append-only conversation transcript for this turn.
	Messages []Message

	// UserProfile maps profile field names to caller-supplied values. The
	// engine reads it and may request completion; it never deletes keys.
	UserProfile map[string]string

	// PendingQuestion is the question under active resolution, fixed at
	// run start to the turn's user message. It stays put even after
	// assistant messages are appended, so the active question never
	// silently drifts to "last message".
	PendingQuestion string

	// TranslatedQuery is the corpus-language rendering of
	// PendingQuestion, set by the translate node.
	TranslatedQuery string

	// RetrievedDocs holds only the most recent retrieval's fused results;
	// each retrieval attempt replaces it wholesale.
	RetrievedDocs []index.Hit

	// RetrievalAttempts counts completed retrievals, bounding the
	// grade-retrieve loop. Monotonically non-decreasing.
	RetrievalAttempts int

	// MissingProfileFields lists required profile fields absent from
	// UserProfile, set by the profile gate.
	MissingProfileFields []string

	// Insufficient records the most recent grading verdict.
	Insufficient bool
}

// NewConversationState creates the state for one conversational turn from
// the caller-supplied message and prior profile.
func NewConversationState(message string, profile map[string]string) *ConversationState {
	if profile == nil {
		profile = make(map[string]string)
	}

	return &ConversationState{
		Messages:        []Message{{Role: RoleUser, Content: message}},
		UserProfile:     profile,
		PendingQuestion: message,
	}
}

// LastAssistantMessage returns the content of the most recent assistant
// message, or empty when none exists.
func (s *ConversationState) LastAssistantMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}
