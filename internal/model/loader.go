package model

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"docchat/internal/config"
	"docchat/internal/domain"
)

// groqBaseURL routes OpenAI-compatible requests to Groq.
const groqBaseURL = "https://api.groq.com/openai/v1"

// providerSecretKeys maps provider tags to the credential each one needs.
var providerSecretKeys = map[string]string{
	"google": config.KeyGoogleAPIKey,
	"openai": config.KeyOpenAIAPIKey,
	"groq":   config.KeyGroqAPIKey,
}

// RequiredSecrets returns the credentials for the configured providers,
// requested up front so startup fails fast on missing configuration.
func RequiredSecrets(cfg *config.AppConfig) []string {
	seen := make(map[string]bool, 2)
	var keys []string
	for _, provider := range []string{cfg.Providers.Embedding, cfg.Providers.LLM} {
		if key, ok := providerSecretKeys[provider]; ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Loader builds embedding models and LLMs from the configured provider
// tags. Adding a provider means adding one case, not changing call sites.
type Loader struct {
	cfg     *config.AppConfig
	secrets *config.Secrets
	logger  *log.Logger
}

func NewLoader(cfg *config.AppConfig, secrets *config.Secrets, logger *log.Logger) *Loader {
	return &Loader{cfg: cfg, secrets: secrets, logger: logger}
}

// LoadEmbedder returns the embedding model for the configured provider.
func (l *Loader) LoadEmbedder(ctx context.Context) (domain.Embedder, error) {
	provider := l.cfg.Providers.Embedding
	mc, ok := l.cfg.EmbeddingModel[provider]
	if !ok {
		return nil, fmt.Errorf("embedding provider %q not found in config", provider)
	}
	l.logger.Info("loading embedding model", "provider", provider, "model", mc.ModelName)
	switch provider {
	case "google":
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(l.secrets.Get(config.KeyGoogleAPIKey)),
			googleai.WithDefaultEmbeddingModel(mc.ModelName),
		)
		if err != nil {
			return nil, fmt.Errorf("initialize google embedding client: %w", err)
		}
		return embeddings.NewEmbedder(client)
	case "openai":
		client, err := openai.New(
			openai.WithToken(l.secrets.Get(config.KeyOpenAIAPIKey)),
			openai.WithEmbeddingModel(mc.ModelName),
		)
		if err != nil {
			return nil, fmt.Errorf("initialize openai embedding client: %w", err)
		}
		return embeddings.NewEmbedder(client)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// LoadLLM returns the configured chat model together with the call
// options (temperature, output token cap) every generation should use.
func (l *Loader) LoadLLM(ctx context.Context) (llms.Model, []llms.CallOption, error) {
	provider := l.cfg.Providers.LLM
	mc, ok := l.cfg.LLM[provider]
	if !ok {
		return nil, nil, fmt.Errorf("llm provider %q not found in config", provider)
	}
	l.logger.Info("loading llm", "provider", provider, "model", mc.ModelName)
	opts := []llms.CallOption{
		llms.WithTemperature(mc.Temperature),
		llms.WithMaxTokens(mc.MaxOutputTokens),
	}
	switch provider {
	case "google":
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(l.secrets.Get(config.KeyGoogleAPIKey)),
			googleai.WithDefaultModel(mc.ModelName),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize google llm: %w", err)
		}
		return client, opts, nil
	case "groq":
		client, err := openai.New(
			openai.WithToken(l.secrets.Get(config.KeyGroqAPIKey)),
			openai.WithModel(mc.ModelName),
			openai.WithBaseURL(groqBaseURL),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize groq llm: %w", err)
		}
		return client, opts, nil
	case "openai":
		client, err := openai.New(
			openai.WithToken(l.secrets.Get(config.KeyOpenAIAPIKey)),
			openai.WithModel(mc.ModelName),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize openai llm: %w", err)
		}
		return client, opts, nil
	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
