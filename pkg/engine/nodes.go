package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/fusion"
	"github.com/wayfarerhq/wayfarer/pkg/graph"
	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

// Node names, one per domain step.
const (
	NodeProfileCheck = "profile_check"
	NodeAskProfile   = "ask_profile"
	NodeTranslate    = "translate_query"
	NodeRetrieve     = "hybrid_retrieve"
	NodeGrade        = "grade_docs"
	NodeSynthesize   = "generate_answer"
)

// profileCheck compares the profile against the required-field list. It
// only records what is missing; routing decides where to go next.
func (e *Engine) profileCheck(_ context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	var missing []string
	for _, field := range e.config.RequiredProfileFields {
		if strings.TrimSpace(s.UserProfile[field]) == "" {
			missing = append(missing, field)
		}
	}
	s.MissingProfileFields = missing

	return s, graph.Next(), nil
}

// askProfile appends one assistant message enumerating exactly the missing
// fields and suspends the run until the caller's next turn.
func (e *Engine) askProfile(_ context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	prompt := profilePrompt(s.MissingProfileFields)
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: prompt})

	e.logger.Debug("awaiting profile fields",
		zap.Strings("missing", s.MissingProfileFields),
	)

	return s, graph.Suspend(SuspendMissingProfile), nil
}

// translateQuery renders the pending question into the corpus language.
func (e *Engine) translateQuery(ctx context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	translated, err := e.generator.Generate(ctx, translatePrompt(e.config.CorpusLanguage, s.PendingQuestion))
	if err != nil {
		return s, graph.Signal{}, graph.Failf(FailTranslation, "translating query: %v", err)
	}

	s.TranslatedQuery = strings.TrimSpace(translated)
	return s, graph.Next(), nil
}

// hybridRetrieve embeds the translated query, derives its sparse terms,
// issues the two top-K retrievals, and replaces RetrievedDocs with the
// fused ranking. Re-attempts widen K so a retry actually changes the
// candidate pool.
func (e *Engine) hybridRetrieve(ctx context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	if s.TranslatedQuery == "" {
		return s, graph.Signal{}, graph.Failf(FailEmptyQuery, "no query to retrieve with")
	}

	dense, err := e.embedder.Embed(ctx, s.TranslatedQuery)
	if err != nil {
		return s, graph.Signal{}, graph.Failf(FailRetrieval, "embedding query: %v", err)
	}

	terms := sparse.Encode(s.TranslatedQuery, e.config.SparseWeighting)

	widen := s.RetrievalAttempts + 1
	denseK := e.config.DenseK * widen
	sparseK := e.config.SparseK * widen

	denseHits, sparseHits, err := e.index.HybridQuery(ctx, dense, terms, max(denseK, sparseK))
	if err != nil {
		return s, graph.Signal{}, graph.Failf(FailRetrieval, "querying index: %v", err)
	}
	denseHits = clampHits(denseHits, denseK)
	sparseHits = clampHits(sparseHits, sparseK)

	s.RetrievedDocs = e.fuse(denseHits, sparseHits)
	s.RetrievalAttempts++

	e.logger.Debug("retrieved passages",
		zap.Int("dense", len(denseHits)),
		zap.Int("sparse", len(sparseHits)),
		zap.Int("fused", len(s.RetrievedDocs)),
		zap.Int("attempt", s.RetrievalAttempts),
	)

	return s, graph.Next(), nil
}

// fuse merges the two ranked lists with reciprocal rank fusion, dense list
// first so it wins ties, and truncates to the configured result size.
func (e *Engine) fuse(denseHits, sparseHits []index.Hit) []index.Hit {
	byID := make(map[string]index.Hit, len(denseHits)+len(sparseHits))
	collect := func(hits []index.Hit) []string {
		ids := make([]string, len(hits))
		for i, hit := range hits {
			ids[i] = hit.ID
			if _, ok := byID[hit.ID]; !ok {
				byID[hit.ID] = hit
			}
		}
		return ids
	}

	denseIDs := collect(denseHits)
	sparseIDs := collect(sparseHits)

	fused := fusion.ReciprocalRank([][]string{denseIDs, sparseIDs}, e.config.RRFConstant)
	fused = fusion.Truncate(fused, e.config.ResultSize)

	docs := make([]index.Hit, 0, len(fused))
	for _, ranked := range fused {
		hit := byID[ranked.ID]
		hit.Score = float32(ranked.Score)
		docs = append(docs, hit)
	}
	return docs
}

func clampHits(hits []index.Hit, k int) []index.Hit {
	if k > 0 && len(hits) > k {
		return hits[:k]
	}
	return hits
}

// gradeDocs asks the generator whether the retrieved passages suffice. A
// grading failure degrades to an insufficient verdict rather than failing
// the run.
func (e *Engine) gradeDocs(ctx context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	response, err := e.generator.Generate(ctx, gradePrompt(s.PendingQuestion, s.RetrievedDocs))
	if err != nil {
		e.logger.Warn("grading failed, assuming insufficient evidence",
			zap.Error(err),
		)
		s.Insufficient = true
		return s, graph.Next(), nil
	}

	s.Insufficient = judgedInsufficient(response)
	return s, graph.Next(), nil
}

// generateAnswer builds the numbered citation context and produces the
// final cited answer in the target response language.
func (e *Engine) generateAnswer(ctx context.Context, s *ConversationState) (*ConversationState, graph.Signal, error) {
	answer, err := e.generator.Generate(ctx, synthesisPrompt(s.PendingQuestion, e.config.AnswerLanguage, s.RetrievedDocs))
	if err != nil {
		return s, graph.Signal{}, graph.Failf(FailGeneration, "synthesizing answer: %v", err)
	}

	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: strings.TrimSpace(answer)})
	return s, graph.Terminal(OutcomeDone), nil
}
