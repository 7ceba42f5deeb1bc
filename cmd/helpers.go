package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nhanvu/docchat/internal/config"
	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/embeddings"
	"github.com/nhanvu/docchat/internal/llm"
	"github.com/nhanvu/docchat/internal/rag"
	"github.com/nhanvu/docchat/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docchat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for Google embeddings")
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, ""), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings, rate limited when the config caps requests per minute.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return provider, nil
}

// buildService wires the full pipeline from config: embedder, vector
// store, document registry and LLM provider. The returned cleanup closes
// the registry.
func buildService(cfg *config.Config) (*rag.Service, *docstore.Store, func(), error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(embedder, cfg.VectorDir())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := store.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector index from %s: %v\n", cfg.VectorDir(), err)
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	docs, err := docstore.Open(cfg.DocumentsPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening document registry: %w", err)
	}

	svc := rag.NewService(cfg.Retrieval, embedder, store, provider, cfg.Model)
	cleanup := func() { docs.Close() }
	return svc, docs, cleanup, nil
}
