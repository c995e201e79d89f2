package ai

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateLLM_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateLLM(nil)

	// nil config returns nil (nothing to validate)
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()
	config := &domain.LLMSettings{
		Provider: domain.AIProviderGroq,
		Model:    "test-model",
	}

	err := validator.ValidateLLM(config)

	// Missing API key means not configured; nothing to validate
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_RejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderGroq,
		Model:    domain.DefaultLLMModel,
		APIKey:   "bad",
		BaseURL:  srv.URL,
	})

	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestConfigValidator_ValidateLLM_UnknownProvider(t *testing.T) {
	err := NewConfigValidator().ValidateLLM(&domain.LLMSettings{Provider: "watson", APIKey: "k"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigValidator_ValidateLLM_MissingModel(t *testing.T) {
	validator := NewConfigValidator()
	validator.create = func(*domain.LLMSettings) (driven.LLMService, error) {
		t.Fatal("client must not be built without a model")
		return nil, nil
	}

	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigValidator_ValidateLLM_CreateError(t *testing.T) {
	validator := NewConfigValidator()
	validator.create = func(*domain.LLMSettings) (driven.LLMService, error) {
		return nil, errors.New("bad base url")
	}

	err := validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
	})

	assert.EqualError(t, err, "bad base url")
}

func TestConfigValidator_ValidateLLM_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  srv.URL,
	})

	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  srv.URL,
	})

	assert.ErrorIs(t, err, domain.ErrProvider)
}
