package config

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestLoadSecrets_FromEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv(KeyGroqAPIKey, "gsk_test_value")

	secrets, err := LoadSecrets(testLogger(), KeyGroqAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "gsk_test_value", secrets.Get(KeyGroqAPIKey))
}

func TestLoadSecrets_MissingKey(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv(KeyGroqAPIKey, "")
	t.Setenv(KeyGoogleAPIKey, "present")

	_, err := LoadSecrets(testLogger(), KeyGoogleAPIKey, KeyGroqAPIKey)
	var missing *domain.MissingSecretError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{KeyGroqAPIKey}, missing.Keys)
}

func TestLoadSecrets_ProductionBlob(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("APP_SECRETS", `{"GROQ_API_KEY":"from-blob","QDRANT_API_KEY":"optional-from-blob"}`)
	t.Setenv(KeyGroqAPIKey, "")

	secrets, err := LoadSecrets(testLogger(), KeyGroqAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-blob", secrets.Get(KeyGroqAPIKey))
	assert.Equal(t, "optional-from-blob", secrets.Get(KeyQdrantAPIKey))
}

func TestLoadSecrets_ProductionBlobInvalidJSON(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("APP_SECRETS", `{not json`)

	_, err := LoadSecrets(testLogger(), KeyGroqAPIKey)
	var missing *domain.MissingSecretError
	assert.ErrorAs(t, err, &missing)
}

func TestLoadSecrets_ProductionFallsBackToEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("APP_SECRETS", `{"GOOGLE_API_KEY":"from-blob"}`)
	t.Setenv(KeyGroqAPIKey, "from-env")

	secrets, err := LoadSecrets(testLogger(), KeyGoogleAPIKey, KeyGroqAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-blob", secrets.Get(KeyGoogleAPIKey))
	assert.Equal(t, "from-env", secrets.Get(KeyGroqAPIKey))
}

func TestGet_OptionalKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv(KeyGroqAPIKey, "required-value")
	t.Setenv(KeyQdrantAPIKey, "optional-value")

	secrets, err := LoadSecrets(testLogger(), KeyGroqAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "optional-value", secrets.Get(KeyQdrantAPIKey))
}

func TestPreviewSecrets_Truncates(t *testing.T) {
	preview := previewSecrets(map[string]string{"KEY": "abcdefghij"}, []string{"KEY"})
	assert.Equal(t, "KEY=abcdef...", preview)
	assert.NotContains(t, preview, "abcdefg")
}
