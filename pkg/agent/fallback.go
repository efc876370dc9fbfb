package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const defaultMaxRetries = 3

// Fallback wraps a provider with a prioritized model list. Each model is
// attempted up to maxRetries times with exponential backoff on transient
// errors before the next model is tried. Non-transient errors propagate
// immediately without touching further models.
type Fallback struct {
	provider   Provider
	models     []string
	maxRetries int
	logger     zerolog.Logger

	// backoffUnit scales the 1s/2s/4s waits; tests shrink it.
	backoffUnit time.Duration
}

// NewFallback creates a fallback caller over the given models, in priority
// order.
func NewFallback(provider Provider, models []string, logger zerolog.Logger) (*Fallback, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}
	return &Fallback{
		provider:    provider,
		models:      models,
		maxRetries:  defaultMaxRetries,
		logger:      logger,
		backoffUnit: time.Second,
	}, nil
}

// Generate tries each model in priority order. Request.Model is overridden
// per attempt.
func (f *Fallback) Generate(ctx context.Context, request Request) (*Response, error) {
	var lastErr error

	for _, model := range f.models {
		request.Model = model

		for attempt := 0; attempt < f.maxRetries; attempt++ {
			response, err := f.provider.Generate(ctx, request)
			if err == nil {
				return response, nil
			}
			if !IsTransientError(err) {
				return nil, err
			}
			lastErr = err

			if attempt == f.maxRetries-1 {
				break
			}

			wait := f.backoffUnit * (1 << attempt)
			f.logger.Warn().Err(err).
				Str("model", model).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("transient model error, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		f.logger.Warn().Str("model", model).Msg("retries exhausted, trying next model")
	}

	return nil, fmt.Errorf("all models exhausted: %w", lastErr)
}
