package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

func TestSettingsShow(t *testing.T) {
	_, settings := setupTestServices(t)
	settings.settings.LLM.APIKey = "gsk-1234567890abcdef"
	settings.settings.Cache.Backend = domain.CacheBackendRedis
	settings.settings.Cache.RedisAddr = "localhost:6379"

	stdout, _, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Groq (cloud, OpenAI-compatible)")
	assert.Contains(t, stdout, domain.DefaultLLMModel)
	assert.Contains(t, stdout, "gsk-...cdef")
	assert.NotContains(t, stdout, "gsk-1234567890abcdef")
	assert.Contains(t, stdout, "Redis: localhost:6379")
	assert.Contains(t, stdout, "Configuration is valid.")
}

func TestSettingsShow_InvalidConfig(t *testing.T) {
	_, settings := setupTestServices(t)
	settings.validateErr = domain.ErrLLMUnavailable

	stdout, _, err := executeCommand(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, stdout, "API Key: (not set)")
	assert.Contains(t, stdout, "Warning:")
	assert.Contains(t, stdout, "bidflow settings llm")
}

func TestSettingsSet(t *testing.T) {
	_, settings := setupTestServices(t)

	stdout, _, err := executeCommand(t, "", "settings", "set", "llm.model", "llama-3.1-8b-instant")

	require.NoError(t, err)
	assert.Equal(t, "llm.model", settings.setKey)
	assert.Equal(t, "llama-3.1-8b-instant", settings.setValue)
	assert.Contains(t, stdout, "Set llm.model")
}

func TestSettingsSet_UnknownKey(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "", "settings", "set", "bogus", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeys(t *testing.T) {
	setupTestServices(t)

	stdout, _, err := executeCommand(t, "", "settings", "keys")

	require.NoError(t, err)
	assert.Equal(t, "llm.model\nllm.provider\n", stdout)
}

func TestSettingsLLM_Wizard(t *testing.T) {
	_, settings := setupTestServices(t)

	stdout, _, err := executeCommand(t, "2\n\nsk-test-key\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.provider)
	assert.Equal(t, "gpt-4o-mini", settings.model)
	assert.Equal(t, "sk-test-key", settings.apiKey)
	assert.Contains(t, stdout, "Validating configuration... OK")
}

func TestSettingsLLM_LocalProviderSkipsKey(t *testing.T) {
	_, settings := setupTestServices(t)

	_, _, err := executeCommand(t, "4\nmistral\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.provider)
	assert.Equal(t, "mistral", settings.model)
	assert.Empty(t, settings.apiKey)
}

func TestSettingsLLM_ValidationFails(t *testing.T) {
	_, settings := setupTestServices(t)
	settings.validateErr = errors.New("401 unauthorized")

	stdout, _, err := executeCommand(t, "\n\nbad-key\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, stdout, "FAILED")
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}
