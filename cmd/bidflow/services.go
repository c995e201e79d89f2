package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/bidflow/internal/adapters/driven/ai"
	"github.com/custodia-labs/bidflow/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bidflow/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bidflow/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/bidflow/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/bidflow/internal/adapters/driving/cli"
	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/core/services"
	"github.com/custodia-labs/bidflow/internal/logger"
	"github.com/custodia-labs/bidflow/internal/normalisers"
	"github.com/custodia-labs/bidflow/internal/observability"
)

// tracingFlushTimeout bounds the span flush on Close.
const tracingFlushTimeout = 5 * time.Second

// newServices wires the adapters for configDir into the driving ports.
// A missing model configuration is not an error here; pipelines report
// it when they run so that settings commands still work.
func newServices(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warnw("model provider unavailable", "provider", settings.LLM.Provider, "error", err)
		llm = nil
	}

	promptsDir := settings.PromptsDir
	if promptsDir == "" {
		promptsDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptsDir)
	if err != nil {
		return nil, err
	}

	cache, err := openStageCache(configDir, settings.Cache)
	if err != nil {
		if llm != nil {
			_ = llm.Close()
		}
		return nil, fmt.Errorf("stage cache: %w", err)
	}

	proposal := services.NewProposalService(
		services.NewIngestor(normalisers.DefaultRegistry()),
		file.NewProfileStore(),
		settings.ProfilePath,
		llm,
	)
	proposal.SetPromptStore(prompts)
	proposal.SetTemperature(settings.LLM.Temperature)
	if cache != nil {
		proposal.SetStageCache(cache)
	}

	tp, err := observability.InitTracing(context.Background(), observability.Config{Version: version})
	if err != nil {
		logger.Warnw("tracing unavailable (continuing)", "error", err)
	}
	if tp != nil {
		proposal.SetTracerProvider(tp)
	}

	return &cli.Services{
		Proposal:     proposal,
		Settings:     settingsService,
		WatchPrompts: prompts.Watch,
		Close: func() error {
			var errs []error
			if llm != nil {
				errs = append(errs, llm.Close())
			}
			if cache != nil {
				errs = append(errs, cache.Close())
			}
			if tp != nil {
				ctx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
				defer cancel()
				errs = append(errs, tp.Shutdown(ctx))
			}
			return errors.Join(errs...)
		},
	}, nil
}

// openStageCache returns the configured cache backend, or nil when caching
// is disabled.
func openStageCache(configDir string, cfg domain.CacheSettings) (driven.StageCache, error) {
	switch cfg.Backend {
	case domain.CacheBackendMemory:
		return memory.NewStageCache(cfg.TTL), nil

	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			return nil, err
		}
		cache := store.StageCache(cfg.TTL)
		if n, err := cache.Prune(context.Background()); err != nil {
			logger.Warnw("stage cache prune failed", "error", err)
		} else if n > 0 {
			logger.Debug("Pruned %d expired stage outputs", n)
		}
		return cache, nil

	case domain.CacheBackendRedis:
		cache, err := redis.Dial(context.Background(), cfg.RedisAddr, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return cache, nil

	default:
		return nil, nil
	}
}
