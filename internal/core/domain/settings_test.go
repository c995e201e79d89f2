package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderGroq, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderOllama, true},
		{"gemini", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
}

func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderGroq.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Contains(t, AIProviderGroq.Description(), "Groq")
	assert.Equal(t, "Unknown", AIProvider("nope").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"groq with key", LLMSettings{Provider: AIProviderGroq, APIKey: "gsk"}, true},
		{"groq without key", LLMSettings{Provider: AIProviderGroq}, false},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"invalid provider", LLMSettings{Provider: "x", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestCacheBackend_IsValid(t *testing.T) {
	for _, b := range []CacheBackend{CacheBackendNone, CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis} {
		assert.True(t, b.IsValid(), b)
	}
	assert.False(t, CacheBackend("memcached").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", s.LLM.Model)
	assert.InDelta(t, 0.2, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 120*time.Second, s.LLM.Timeout)
	assert.Empty(t, s.LLM.APIKey)
	assert.Equal(t, "my_business_profile.txt", s.ProfilePath)
	assert.Equal(t, CacheBackendNone, s.Cache.Backend)
	assert.False(t, s.LLM.IsConfigured())
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile("missing.txt")

	assert.Equal(t, "Standard IT services and software engineering expertise.", p.Text)
	assert.Equal(t, "missing.txt", p.Path)
	assert.Equal(t, ProfileSourceDefault, p.Source)
}

func TestDefaultModelFor(t *testing.T) {
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, DefaultModelFor(p), p)
	}
	assert.Equal(t, "llama-3.3-70b-versatile", DefaultModelFor(AIProviderGroq))
	assert.Empty(t, DefaultModelFor("unknown"))
	assert.Equal(t, AIProviderGroq, AllLLMProviders()[0])
}
