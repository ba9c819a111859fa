package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProvidersConfig names the active embedding and LLM providers. Each must
// match a key in the corresponding per-provider block.
type ProvidersConfig struct {
	Embedding string `yaml:"embedding"`
	LLM       string `yaml:"llm"`
}

// EmbeddingModelConfig configures one embedding provider.
type EmbeddingModelConfig struct {
	ModelName string `yaml:"model_name"`
}

// LLMModelConfig configures one LLM provider.
type LLMModelConfig struct {
	ModelName       string  `yaml:"model_name"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// VectorStoreConfig selects the vector store implementation.
type VectorStoreConfig struct {
	Type string `yaml:"type"`
}

// S3Config holds the archival bucket and the key prefix used for
// pre-index uploads.
type S3Config struct {
	BucketName     string `yaml:"bucket_name"`
	PreindexPrefix string `yaml:"preindex_prefix"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Providers      ProvidersConfig                 `yaml:"providers"`
	EmbeddingModel map[string]EmbeddingModelConfig `yaml:"embedding_model"`
	LLM            map[string]LLMModelConfig       `yaml:"llm"`
	VectorStore    VectorStoreConfig               `yaml:"vector_store"`
	S3             S3Config                        `yaml:"aws_s3"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Providers: ProvidersConfig{Embedding: "google", LLM: "groq"},
		EmbeddingModel: map[string]EmbeddingModelConfig{
			"google": {ModelName: "text-embedding-004"},
			"openai": {ModelName: "text-embedding-3-small"},
		},
		LLM: map[string]LLMModelConfig{
			"google": {ModelName: "gemini-2.0-flash", Temperature: 0.2, MaxOutputTokens: 2048},
			"groq":   {ModelName: "llama-3.3-70b-versatile", Temperature: 0.2, MaxOutputTokens: 2048},
			"openai": {ModelName: "gpt-4o-mini", Temperature: 0.2, MaxOutputTokens: 2048},
		},
		VectorStore: VectorStoreConfig{Type: "qdrant"},
		S3:          S3Config{BucketName: "docchat-uploads", PreindexPrefix: "preindex"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Providers.Embedding == "" {
		cfg.Providers.Embedding = "google"
	}
	if cfg.Providers.LLM == "" {
		cfg.Providers.LLM = "groq"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.S3.PreindexPrefix == "" {
		cfg.S3.PreindexPrefix = "preindex"
	}
	for name, llm := range cfg.LLM {
		if llm.Temperature == 0 {
			llm.Temperature = 0.2
		}
		if llm.MaxOutputTokens == 0 {
			llm.MaxOutputTokens = 2048
		}
		cfg.LLM[name] = llm
	}
}
