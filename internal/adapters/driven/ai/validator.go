package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks a provider configuration by building a client for
// it and pinging the provider.
type ConfigValidator struct {
	timeout time.Duration
	create  func(*domain.LLMSettings) (driven.LLMService, error)
}

// NewConfigValidator creates a validator that waits up to pingTimeout for
// the provider to answer.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout, create: CreateLLMService}
}

// ValidateLLM returns nil when config is nil or incomplete, since there is
// nothing to reach yet. An unknown provider or a configured provider with
// no model is rejected without a request.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, config.Provider)
	}
	if !config.IsConfigured() {
		return nil
	}
	if config.Model == "" {
		return fmt.Errorf("%w: no model set for %s", domain.ErrInvalidInput, config.Provider)
	}

	svc, err := v.create(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	start := time.Now()
	if err := svc.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("Provider %s answered in %s", config.Provider, time.Since(start).Round(time.Millisecond))
	return nil
}
