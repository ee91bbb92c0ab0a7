// Package engine implements the conversational orchestration core: a
// cyclic workflow graph that gates on profile completeness, translates the
// question into the corpus language, retrieves candidate passages with
// hybrid dense+sparse ranking fusion, grades the evidence, and synthesizes
// a cited answer.
//
// All external collaborators (generator, embedder, document index) are
// injected at construction, so the engine carries no global client state
// and is trivially testable with fakes. A single Engine is safe for
// concurrent runs over disjoint conversation states.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/embeddings"
	"github.com/wayfarerhq/wayfarer/pkg/fusion"
	"github.com/wayfarerhq/wayfarer/pkg/graph"
	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
	"github.com/wayfarerhq/wayfarer/pkg/textgen"
	"github.com/wayfarerhq/wayfarer/pkg/utils"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxRetrievalAttempts = 3
	DefaultDenseK               = 5
	DefaultSparseK              = 5
	DefaultResultSize           = 4
	DefaultCorpusLanguage       = "繁體中文"
	DefaultAnswerLanguage       = "English"
)

// DefaultRequiredProfileFields is the profile the engine gates on before
// doing any retrieval work.
var DefaultRequiredProfileFields = []string{"nationality", "visa_type"}

// Config holds the engine's tuning knobs. The zero value is usable; every
// field falls back to its default.
type Config struct {
	// RequiredProfileFields must all be present in the user profile
	// before the question is processed.
	RequiredProfileFields []string

	// CorpusLanguage is the language queries are translated into; the
	// document index is maintained in this single language.
	CorpusLanguage string

	// AnswerLanguage is the target response language, assumed known from
	// the original request.
	AnswerLanguage string

	// MaxRetrievalAttempts bounds the grade-retrieve loop.
	MaxRetrievalAttempts int

	// DenseK and SparseK size the two top-K candidate retrievals.
	DenseK  int
	SparseK int

	// ResultSize truncates the fused ranking.
	ResultSize int

	// RRFConstant is the reciprocal rank fusion smoothing constant.
	RRFConstant float64

	// SparseWeighting selects the sparse term weighting scheme.
	SparseWeighting sparse.Weighting
}

func (c Config) withDefaults() Config {
	if len(c.RequiredProfileFields) == 0 {
		c.RequiredProfileFields = DefaultRequiredProfileFields
	}
	if c.CorpusLanguage == "" {
		c.CorpusLanguage = DefaultCorpusLanguage
	}
	if c.AnswerLanguage == "" {
		c.AnswerLanguage = DefaultAnswerLanguage
	}
	if c.MaxRetrievalAttempts <= 0 {
		c.MaxRetrievalAttempts = DefaultMaxRetrievalAttempts
	}
	if c.DenseK <= 0 {
		c.DenseK = DefaultDenseK
	}
	if c.SparseK <= 0 {
		c.SparseK = DefaultSparseK
	}
	if c.ResultSize <= 0 {
		c.ResultSize = DefaultResultSize
	}
	if c.RRFConstant <= 0 {
		c.RRFConstant = fusion.DefaultConstant
	}
	if c.SparseWeighting == "" {
		c.SparseWeighting = sparse.WeightingFrequency
	}
	return c
}

// Engine orchestrates one conversational turn per Run call.
type Engine struct {
	config    Config
	generator textgen.Generator
	embedder  embeddings.Embedder
	index     index.Driver
	executor  *graph.Executor[*ConversationState]
	logger    *zap.Logger
}

// New constructs an engine over the injected collaborators and builds its
// workflow graph once; the graph is immutable afterwards.
func New(config Config, generator textgen.Generator, embedder embeddings.Embedder, idx index.Driver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		config:    config.withDefaults(),
		generator: generator,
		embedder:  embedder,
		index:     idx,
		logger:    logger,
	}

	e.executor = graph.NewExecutor(e.buildGraph(), graph.ExecutorConfig{
		MaxVisits: e.config.MaxRetrievalAttempts,
		Logger:    logger,
	})

	return e
}

// buildGraph wires the six domain nodes:
//
//	profile_check ──┬─> ask_profile (suspend)
//	                └─> translate_query -> hybrid_retrieve -> grade_docs
//	                         ^                                    │
//	                         └──────────── insufficient ──────────┤
//	                                                              └─> generate_answer (terminal)
func (e *Engine) buildGraph() *graph.Graph[*ConversationState] {
	g := graph.New[*ConversationState](NodeProfileCheck)

	g.AddNode(NodeProfileCheck, e.profileCheck)
	g.AddNode(NodeAskProfile, e.askProfile)
	g.AddNode(NodeTranslate, e.translateQuery)
	g.AddNode(NodeRetrieve, e.hybridRetrieve)
	g.AddNode(NodeGrade, e.gradeDocs)
	g.AddNode(NodeSynthesize, e.generateAnswer)

	g.AddConditionalEdge(NodeProfileCheck,
		func(s *ConversationState) string {
			if len(s.MissingProfileFields) > 0 {
				return "ask"
			}
			return "go"
		},
		map[string]string{"ask": NodeAskProfile, "go": NodeTranslate},
		NodeTranslate,
	)

	g.AddEdge(NodeTranslate, NodeRetrieve)
	g.AddEdge(NodeRetrieve, NodeGrade)

	maxAttempts := e.config.MaxRetrievalAttempts
	g.AddConditionalEdge(NodeGrade,
		func(s *ConversationState) string {
			if s.Insufficient && s.RetrievalAttempts < maxAttempts {
				return "retry"
			}
			return "answer"
		},
		map[string]string{"retry": NodeRetrieve, "answer": NodeSynthesize},
		NodeSynthesize,
	)

	// ask_profile suspends and generate_answer terminates; neither needs
	// an outgoing edge.

	return g
}

// Run executes one conversational turn. Client events stream to emit in
// order as the run progresses; the final state and run result return when
// the run completes, suspends, fails, or is abandoned. The returned error
// is non-nil only for context cancellation or a graph wiring bug.
func (e *Engine) Run(ctx context.Context, message string, profile map[string]string, emit EmitFunc) (*ConversationState, graph.Result, error) {
	s := NewConversationState(message, profile)

	final, result, err := e.executor.Run(ctx, s, e.eventSink(emit))
	if err != nil {
		return final, result, err
	}

	emitTerminal(emit, final, result)

	e.logger.Info("run finished",
		zap.String("question", utils.Truncate(s.PendingQuestion, 80)),
		zap.Int("result_kind", int(result.Kind)),
		zap.String("outcome", result.Outcome),
		zap.String("fail_kind", result.FailKind),
		zap.Int("retrieval_attempts", final.RetrievalAttempts),
	)

	return final, result, nil
}
