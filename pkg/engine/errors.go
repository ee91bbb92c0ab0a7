package engine

// Failure kinds surfaced to the caller in error events. Infrastructure
// failures are terminal and never retried inside the engine; grading
// failures degrade to an insufficient verdict instead of appearing here.
const (
	FailTranslation = "translation_error"
	FailRetrieval   = "retrieval_error"
	FailGeneration  = "generation_error"
	FailEmptyQuery  = "empty_query"
)

// SuspendMissingProfile is the suspend reason raised when required profile
// fields are absent and the run is waiting on the caller's next turn.
const SuspendMissingProfile = "missing_profile"

// OutcomeDone is the terminal outcome of a run that produced an answer.
const OutcomeDone = "done"
