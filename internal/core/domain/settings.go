package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a text-generation service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGroq is the Groq cloud API (OpenAI-compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGroq || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// AllLLMProviders returns the supported providers, default first.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama}
}

// DefaultModelFor returns the model used when none is configured.
func DefaultModelFor(p AIProvider) string {
	switch p {
	case AIProviderGroq:
		return DefaultLLMModel
	case AIProviderOpenAI:
		return "gpt-4o-mini"
	case AIProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case AIProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// Defaults mirror the deployment the pipeline prompts were tuned against.
const (
	DefaultLLMProvider    = AIProviderGroq
	DefaultLLMModel       = "llama-3.3-70b-versatile"
	DefaultLLMTemperature = 0.2
	DefaultLLMTimeout     = 120 * time.Second
	DefaultProfilePath    = "my_business_profile.txt"
	DefaultCacheTTL       = 24 * time.Hour
)

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature used for every stage.
	Temperature float64

	// Timeout bounds a single request. Zero selects the provider default.
	Timeout time.Duration

	// RequestsPerMinute paces outgoing requests. Zero disables pacing.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CacheBackend selects where stage outputs are memoised between runs.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendNone, CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// CacheSettings holds stage cache configuration.
type CacheSettings struct {
	// Backend selects the cache implementation.
	Backend CacheBackend

	// TTL is how long an entry stays valid.
	TTL time.Duration

	// RedisAddr is the redis address when Backend is redis.
	RedisAddr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// ProfilePath is the business profile file.
	ProfilePath string

	// PromptsDir holds user-editable stage prompt overrides.
	// Empty selects the default under the config directory.
	PromptsDir string

	// Cache holds stage cache settings.
	Cache CacheSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The API key is left empty; it must come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    DefaultLLMProvider,
			Model:       DefaultLLMModel,
			Temperature: DefaultLLMTemperature,
			Timeout:     DefaultLLMTimeout,
		},
		ProfilePath: DefaultProfilePath,
		Cache: CacheSettings{
			Backend: CacheBackendNone,
			TTL:     DefaultCacheTTL,
		},
	}
}
