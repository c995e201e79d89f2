package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bidflow/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bidflow/internal/core/domain"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = fakeEnv(env)
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 120*time.Second, settings.LLM.Timeout)
	assert.Equal(t, "my_business_profile.txt", settings.ProfilePath)
	assert.Equal(t, domain.CacheBackendNone, settings.Cache.Backend)
	assert.Equal(t, 24*time.Hour, settings.Cache.TTL)
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.model", "gpt-4o")
	_ = store.Set("llm.temperature", 0.0)
	_ = store.Set("llm.timeout_seconds", 30)
	_ = store.Set("cache.backend", "sqlite")
	_ = store.Set("cache.ttl_hours", 2)
	_ = store.Set("profile.path", "/etc/profile.txt")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Zero(t, settings.LLM.Temperature)
	assert.Equal(t, 30*time.Second, settings.LLM.Timeout)
	assert.Equal(t, domain.CacheBackendSQLite, settings.Cache.Backend)
	assert.Equal(t, 2*time.Hour, settings.Cache.TTL)
	assert.Equal(t, "/etc/profile.txt", settings.ProfilePath)
}

func TestSettingsService_Get_DefaultModelFollowsProvider(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("llm.provider", "invalid_provider")
	_ = store.Set("cache.backend", "memcached")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderGroq, settings.LLM.Provider)
	assert.Equal(t, domain.CacheBackendNone, settings.Cache.Backend)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		stored   string
		expected string
	}{
		{"generic variable wins", "groq", map[string]string{"BIDFLOW_API_KEY": "generic", "GROQ_API_KEY": "groq"}, "", "generic"},
		{"provider variable", "groq", map[string]string{"GROQ_API_KEY": "groq"}, "", "groq"},
		{"openai variable", "openai", map[string]string{"OPENAI_API_KEY": "sk-openai"}, "", "sk-openai"},
		{"other provider ignored", "anthropic", map[string]string{"GROQ_API_KEY": "groq"}, "", ""},
		{"config wins over env", "groq", map[string]string{"GROQ_API_KEY": "groq"}, "stored", "stored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettingsService(tt.env)
			_ = store.Set("llm.provider", tt.provider)
			if tt.stored != "" {
				_ = store.Set("llm.api_key", tt.stored)
			}

			settings, err := service.Get()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, settings.LLM.APIKey)
		})
	}
}

func TestSettingsService_Save(t *testing.T) {
	service, store := newTestSettingsService(nil)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderAnthropic
	settings.LLM.Model = "claude-3-5-sonnet-latest"
	settings.LLM.APIKey = "sk-ant-test"
	settings.LLM.RequestsPerMinute = 30
	settings.Cache.Backend = domain.CacheBackendRedis
	settings.Cache.RedisAddr = "localhost:6379"

	require.NoError(t, service.Save(&settings))

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, retrieved.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", retrieved.LLM.Model)
	assert.Equal(t, "sk-ant-test", retrieved.LLM.APIKey)
	assert.Equal(t, 30, retrieved.LLM.RequestsPerMinute)
	assert.Equal(t, domain.CacheBackendRedis, retrieved.Cache.Backend)
	assert.Equal(t, "localhost:6379", store.GetString("cache.redis_addr"))
}

func TestSettingsService_Save_DoesNotPersistEnvironmentKey(t *testing.T) {
	service, store := newTestSettingsService(map[string]string{"GROQ_API_KEY": "from-env"})

	settings, err := service.Get()
	require.NoError(t, err)
	require.Equal(t, "from-env", settings.LLM.APIKey)

	require.NoError(t, service.Save(settings))

	_, stored := store.Get("llm.api_key")
	assert.False(t, stored)
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettingsService(nil)

	require.NoError(t, service.Set("llm.temperature", "0.7"))
	require.NoError(t, service.Set("llm.timeout_seconds", "45"))
	require.NoError(t, service.Set("llm.provider", "ollama"))
	require.NoError(t, service.Set("profile.path", "profile.txt"))

	assert.InDelta(t, 0.7, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, 45, store.GetInt("llm.timeout_seconds"))
	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, "profile.txt", store.GetString("profile.path"))
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"llm.provider", "gemini"},
		{"llm.temperature", "hot"},
		{"llm.temperature", "3"},
		{"llm.timeout_seconds", "-1"},
		{"cache.backend", "memcached"},
		{"search.mode", "hybrid"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			service, _ := newTestSettingsService(nil)
			assert.Error(t, service.Set(tt.key, tt.value))
		})
	}
}

func TestSettingsService_Set_UnknownKey(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	err := service.Set("search.mode", "hybrid")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	keys := service.Keys()

	assert.Contains(t, keys, "llm.provider")
	assert.Contains(t, keys, "cache.redis_addr")
	assert.IsIncreasing(t, keys)
	for _, key := range keys {
		assert.NotErrorIs(t, service.Set(key, "1"), domain.ErrInvalidInput, key)
	}
}

func TestSettingsService_SetLLMProvider_Ollama(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

	settings, _ := service.Get()
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_OpenAI(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-test"))

	settings, _ := service.Get()
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_RequiresAPIKey(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	err := service.SetLLMProvider(domain.AIProviderGroq, "", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetLLMProvider_KeyFromEnvironment(t *testing.T) {
	service, _ := newTestSettingsService(map[string]string{"GROQ_API_KEY": "gsk"})

	require.NoError(t, service.SetLLMProvider(domain.AIProviderGroq, "", ""))

	settings, _ := service.Get()
	assert.Equal(t, "gsk", settings.LLM.APIKey)
}

func TestSettingsService_SetLLMProvider_Invalid(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	err := service.SetLLMProvider("invalid", "", "")

	assert.Error(t, err)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		service, _ := newTestSettingsService(nil)
		err := service.Validate()
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("configured", func(t *testing.T) {
		service, _ := newTestSettingsService(map[string]string{"BIDFLOW_API_KEY": "k"})
		assert.NoError(t, service.Validate())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		service, store := newTestSettingsService(nil)
		_ = store.Set("llm.provider", "ollama")
		assert.NoError(t, service.Validate())
	})

	t.Run("redis needs address", func(t *testing.T) {
		service, store := newTestSettingsService(map[string]string{"BIDFLOW_API_KEY": "k"})
		_ = store.Set("cache.backend", "redis")
		assert.Error(t, service.Validate())
	})
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

type stubAIValidator struct {
	err    error
	called *domain.LLMSettings
}

func (v *stubAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	v.called = config
	return v.err
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	service, _ := newTestSettingsService(nil)
	assert.NoError(t, service.ValidateLLMConfig())

	validator := &stubAIValidator{err: errors.New("unreachable")}
	service.aiValidator = validator

	err := service.ValidateLLMConfig()

	assert.EqualError(t, err, "unreachable")
	require.NotNil(t, validator.called)
	assert.Equal(t, domain.AIProviderGroq, validator.called.Provider)
}
