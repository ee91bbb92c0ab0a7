package config

const (
	defaultAPIListen = ":8080"

	defaultCorpusLanguage = "繁體中文"
	defaultAnswerLanguage = "English"

	defaultMaxRetrievalAttempts = 3

	defaultDenseK          = 5
	defaultSparseK         = 5
	defaultResultSize      = 4
	defaultRRFConstant     = 60.0
	defaultSparseWeighting = "frequency"

	defaultIndexProvider   = "qdrant"
	defaultIndexTarget     = "localhost:6334"
	defaultIndexCollection = "immigration"
	defaultIndexDimensions = 768

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "embeddinggemma"

	defaultLLMProvider = "ollama"
	defaultLLMTarget   = "http://localhost:11434"
	defaultLLMModel    = "llama3.1"
	defaultLLMTimeout  = 120

	defaultIngestInterval  = 1440
	defaultIngestChunkSize = 1000
	defaultIngestRate      = 1.0
	defaultIngestTracker   = "sqlite"

	defaultEventStreamTopic = "wayfarer.answers"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Corpus: CorpusConfig{
			Language:       defaultCorpusLanguage,
			AnswerLanguage: defaultAnswerLanguage,
		},
		Profile: ProfileConfig{
			Required: []string{"nationality", "visa_type"},
		},
		Graph: GraphConfig{
			MaxRetrievalAttempts: defaultMaxRetrievalAttempts,
		},
		Retrieval: RetrievalConfig{
			DenseK:          defaultDenseK,
			SparseK:         defaultSparseK,
			ResultSize:      defaultResultSize,
			RRFConstant:     defaultRRFConstant,
			SparseWeighting: defaultSparseWeighting,
		},
		Index: IndexConfig{
			Provider:   defaultIndexProvider,
			Target:     defaultIndexTarget,
			Collection: defaultIndexCollection,
			Dimensions: defaultIndexDimensions,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
		},
		LLM: LLMConfig{
			Provider:       defaultLLMProvider,
			Target:         defaultLLMTarget,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Ingest: IngestConfig{
			IntervalMinutes: defaultIngestInterval,
			ChunkSize:       defaultIngestChunkSize,
			RatePerSecond:   defaultIngestRate,
			Tracker:         defaultIngestTracker,
		},
		EventStream: EventStreamConfig{
			Enabled: false,
			Topic:   defaultEventStreamTopic,
		},
	}
}
