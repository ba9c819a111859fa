package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"docchat/internal/domain"
)

// Secret key names resolved at startup.
const (
	KeyGoogleAPIKey       = "GOOGLE_API_KEY"
	KeyOpenAIAPIKey       = "OPENAI_API_KEY"
	KeyGroqAPIKey         = "GROQ_API_KEY"
	KeyAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeyAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	KeyAWSRegion          = "AWS_REGION"
	KeyQdrantURL          = "QDRANT_URL"
	KeyQdrantAPIKey       = "QDRANT_API_KEY"
)

// secretBlobEnv holds a single JSON-encoded object of key/value pairs in
// production deployments.
const secretBlobEnv = "APP_SECRETS"

// Secrets is the resolved credential set, constructed once at process
// start and passed by reference to every component that needs it.
type Secrets struct {
	values map[string]string
}

// LoadSecrets resolves the required keys from the environment (local mode,
// after loading .env) or from the APP_SECRETS JSON blob (ENV=production).
// Any missing key aborts startup with a MissingSecretError.
func LoadSecrets(logger *log.Logger, required ...string) (*Secrets, error) {
	values := make(map[string]string, len(required))
	if strings.ToLower(os.Getenv("ENV")) == "production" {
		logger.Info("running in production mode, reading secret blob")
		if blob := os.Getenv(secretBlobEnv); blob != "" {
			if err := json.Unmarshal([]byte(blob), &values); err != nil {
				logger.Error("failed to decode secret blob", "err", err)
				return nil, &domain.MissingSecretError{Keys: required}
			}
		}
	} else {
		_ = godotenv.Load()
		logger.Info("running in local mode, loading environment variables from .env file")
	}

	var missing []string
	for _, key := range required {
		if values[key] == "" {
			values[key] = os.Getenv(key)
		}
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		logger.Error("missing required secrets", "keys", strings.Join(missing, ","))
		return nil, &domain.MissingSecretError{Keys: missing}
	}
	logger.Info("secrets loaded", "keys", previewSecrets(values, required))
	return &Secrets{values: values}, nil
}

// Get returns the value for a key, falling back to the process
// environment for keys that were not required at load time.
func (s *Secrets) Get(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// previewSecrets renders the first characters of each value so loads are
// auditable without leaking credentials.
func previewSecrets(values map[string]string, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		val := values[key]
		if len(val) > 6 {
			val = val[:6] + "..."
		}
		parts = append(parts, key+"="+val)
	}
	return strings.Join(parts, " ")
}
