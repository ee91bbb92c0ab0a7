package engine

import (
	"fmt"

	"github.com/wayfarerhq/wayfarer/pkg/graph"
)

// EventType classifies a client-visible event.
type EventType string

const (
	// EventStatus reports run progress, including the ask-profile prompt
	// when the run suspends awaiting profile data.
	EventStatus EventType = "status"

	// EventAnswer carries the final cited answer. At most one per run.
	EventAnswer EventType = "answer"

	// EventError carries a terminal failure. At most one per run, and
	// mutually exclusive with EventAnswer.
	EventError EventType = "error"
)

// Event is one client-visible stream entry, encoded as a single JSON line
// by the transport.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// EmitFunc receives client events strictly in run order.
type EmitFunc func(Event)

// statusTexts are the per-node progress messages. The synthesize node has
// none: its completion is reported by the answer event itself.
var statusTexts = map[string]string{
	NodeProfileCheck: "checking profile",
	NodeTranslate:    "translating question",
	NodeRetrieve:     "searching immigration documents",
	NodeGrade:        "reviewing retrieved passages",
}

// eventSink adapts executor node-completion events into status events. The
// ask-profile node surfaces its prompt text so a suspended run still tells
// the caller what it needs.
func (e *Engine) eventSink(emit EmitFunc) graph.EventSink {
	if emit == nil {
		return nil
	}

	return func(ev graph.Event) {
		switch ev.Node {
		case NodeAskProfile:
			// Prompt content is emitted by emitTerminal with the final
			// state in hand; nothing to do here.
		default:
			if text, ok := statusTexts[ev.Node]; ok {
				emit(Event{Type: EventStatus, Content: text})
			}
		}
	}
}

// emitTerminal translates the run result into the stream's ending:
// exactly one answer or error event, a status prompt for suspension, and
// nothing for abandonment.
func emitTerminal(emit EmitFunc, s *ConversationState, result graph.Result) {
	if emit == nil {
		return
	}

	switch result.Kind {
	case graph.Completed:
		emit(Event{Type: EventAnswer, Content: s.LastAssistantMessage()})
	case graph.Failed:
		emit(Event{Type: EventError, Content: fmt.Sprintf("%s: %s", result.FailKind, result.Detail)})
	case graph.Suspended:
		emit(Event{Type: EventStatus, Content: s.LastAssistantMessage()})
	}
}
