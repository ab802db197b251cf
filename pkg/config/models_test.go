package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelProviderKnownModels(t *testing.T) {
	for name, info := range KnownModels {
		provider, err := GetModelProvider(name)
		require.NoError(t, err, "model %s", name)
		assert.Equal(t, info.Provider, provider, "model %s", name)
	}
}

func TestGetModelProviderPatternFallback(t *testing.T) {
	tests := []struct {
		model    string
		provider string
	}{
		{"claude-next-9000", ProviderAnthropic},
		{"gpt-7-preview", ProviderOpenAI},
		{"o3-pro", ProviderOpenAI},
		{"gemini-ultra", ProviderGoogle},
		{"llama4:70b", ProviderOllama},
		{"ollama:phi4", ProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := GetModelProvider(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
		})
	}
}

func TestGetModelProviderUnknown(t *testing.T) {
	_, err := GetModelProvider("totally-made-up")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "totally-made-up")
}

func TestGetModelInfoUnknownUsesConservativeDefaults(t *testing.T) {
	info, known := GetModelInfo("gpt-99")
	assert.False(t, known)
	assert.Equal(t, ProviderOpenAI, info.Provider)
	assert.Equal(t, 32000, info.MaxContextTokens)
	assert.Zero(t, info.InputCPM)
}

func TestModelNamesSorted(t *testing.T) {
	names := ModelNames()
	require.Len(t, names, len(KnownModels))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestGetAPIKeyEnvFallback(t *testing.T) {
	SetDecryptedSecrets(nil)
	t.Setenv(EnvOpenAIAPIKey, "sk-test-openai")

	key, err := GetAPIKey(ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-openai", key)
}

func TestGetAPIKeySecretsPrecedence(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "sk-env")
	SetDecryptedSecrets(map[string]string{EnvAnthropicAPIKey: "sk-file"})
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	key, err := GetAPIKey(ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", key)
}

func TestGetAPIKeyOllamaHostDefault(t *testing.T) {
	t.Setenv(EnvOllamaHost, "")
	host, err := GetAPIKey(ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaHost, host)
}

func TestGetAPIKeyMissing(t *testing.T) {
	SetDecryptedSecrets(nil)
	t.Setenv(EnvGeminiAPIKey, "")

	_, err := GetAPIKey(ProviderGoogle)
	assert.Error(t, err)
}
