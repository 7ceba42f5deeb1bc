package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level docchat configuration, corresponding to .docchat.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Port              int          `yaml:"port" koanf:"port"`
	// RateLimitRPM caps generative model requests per minute. Zero
	// disables the cap.
	RateLimitRPM int       `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Retrieval    Retrieval `yaml:"retrieval" koanf:"retrieval"`
	Upload       Upload    `yaml:"upload" koanf:"upload"`
}

// Retrieval holds the chunking and search parameters of the RAG pipeline.
type Retrieval struct {
	// ChunkSize is the maximum chunk length in characters. Must be larger
	// than ChunkOverlap so splitting always makes forward progress.
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	// TopK is the number of nearest chunks fetched per query before the
	// distance filter is applied.
	TopK int `yaml:"top_k" koanf:"top_k"`
	// MaxDistance is the relevance cutoff. Matches whose distance exceeds
	// it are discarded (distance = 1 - cosine similarity, lower means
	// more similar).
	MaxDistance float32 `yaml:"max_distance" koanf:"max_distance"`
}

// Upload holds file upload limits.
type Upload struct {
	MaxBytes          int64    `yaml:"max_bytes" koanf:"max_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions" koanf:"allowed_extensions"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash-001",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           ".docchat",
		Port:              8000,
		Retrieval: Retrieval{
			ChunkSize:    4000,
			ChunkOverlap: 400,
			TopK:         5,
			MaxDistance:  0.6,
		},
		Upload: Upload{
			MaxBytes:          10 * 1024 * 1024,
			AllowedExtensions: []string{"pdf", "docx", "pptx", "xlsx", "csv", "txt", "md"},
		},
	}
}
