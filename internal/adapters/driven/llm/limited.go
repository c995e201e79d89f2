package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure Limited implements the interface.
var _ driven.LLMService = (*Limited)(nil)

// Limited paces calls to an underlying LLMService so that a pipeline run
// stays under a provider's requests-per-minute quota. It waits rather than
// failing; the wait honours context cancellation.
type Limited struct {
	driven.LLMService
	limiter *rate.Limiter
}

// NewLimited wraps svc with a limiter allowing requestsPerMinute calls.
// A non-positive rate returns svc unchanged.
func NewLimited(svc driven.LLMService, requestsPerMinute int) driven.LLMService {
	if requestsPerMinute <= 0 {
		return svc
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Limited{
		LLMService: svc,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Generate waits for a token and forwards the call.
func (l *Limited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.LLMService.Generate(ctx, prompt, opts)
}

// Chat waits for a token and forwards the call.
func (l *Limited) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.LLMService.Chat(ctx, messages, opts)
}
