package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMTimeout     = "llm.timeout_seconds"
	keyLLMRPM         = "llm.requests_per_minute"
	keyProfilePath    = "profile.path"
	keyPromptsDir     = "prompts.dir"
	keyCacheBackend   = "cache.backend"
	keyCacheTTL       = "cache.ttl_hours"
	keyCacheRedisAddr = "cache.redis_addr"
)

// Environment variables consulted when no API key is configured.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvAPIKey = "BIDFLOW_API_KEY"
)

// providerKeyEnv maps providers to their conventional key variables.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderGroq:      "GROQ_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(defaults.LLM.Provider),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			Timeout:           time.Duration(s.getInt(keyLLMTimeout, int(defaults.LLM.Timeout/time.Second))) * time.Second,
			RequestsPerMinute: s.configStore.GetInt(keyLLMRPM),
		},
		ProfilePath: s.getString(keyProfilePath, defaults.ProfilePath),
		PromptsDir:  s.configStore.GetString(keyPromptsDir),
		Cache: domain.CacheSettings{
			Backend:   s.getCacheBackend(defaults.Cache.Backend),
			TTL:       time.Duration(s.getInt(keyCacheTTL, int(defaults.Cache.TTL/time.Hour))) * time.Hour,
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
		},
	}
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultModelFor(settings.LLM.Provider))

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// envAPIKey returns the API key from the environment, if any.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	if key := s.getenv(EnvAPIKey); key != "" {
		return key
	}
	if name, ok := providerKeyEnv[provider]; ok {
		return s.getenv(name)
	}
	return ""
}

// Save persists application settings.
// An API key that came from the environment is written only if the config
// already held one.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMTimeout, int(settings.LLM.Timeout / time.Second)},
		{keyLLMRPM, settings.LLM.RequestsPerMinute},
		{keyProfilePath, settings.ProfilePath},
		{keyPromptsDir, settings.PromptsDir},
		{keyCacheBackend, settings.Cache.Backend.String()},
		{keyCacheTTL, int(settings.Cache.TTL / time.Hour)},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Keys returns the recognised config keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTemperature,
		keyLLMTimeout, keyLLMRPM, keyProfilePath, keyPromptsDir,
		keyCacheBackend, keyCacheTTL, keyCacheRedisAddr,
	}
	sort.Strings(keys)
	return keys
}

// Set updates a single setting, converting and validating value for key.
func (s *SettingsService) Set(key, value string) error {
	var v any
	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("invalid LLM provider: %s", value)
		}
		v = value
	case keyCacheBackend:
		if !domain.CacheBackend(value).IsValid() {
			return fmt.Errorf("invalid cache backend: %s", value)
		}
		v = value
	case keyLLMTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid temperature %q: must be a number between 0 and 2", value)
		}
		v = f
	case keyLLMTimeout, keyLLMRPM, keyCacheTTL:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: must be a non-negative integer", key, value)
		}
		v = n
	case keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyProfilePath, keyPromptsDir, keyCacheRedisAddr:
		v = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Set(key, v)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	} else {
		settings.LLM.APIKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && settings.LLM.APIKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultModelFor(provider)
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	return s.Save(settings)
}

// Validate checks that current settings can run a pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: provider %q needs an API key (set llm.api_key or %s)",
			domain.ErrLLMUnavailable, settings.LLM.Provider, EnvAPIKey)
	}
	if settings.Cache.Backend == domain.CacheBackendRedis && settings.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires %s", keyCacheRedisAddr)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
