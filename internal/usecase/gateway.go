package usecase

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/domain/repository"
	"llm-benchmark/internal/infra"

	"github.com/cockroachdb/errors"
)

// ProviderGateway dispatches a model identifier to the single provider whose
// prefix it starts with, bounds the call with a timeout and measures its
// latency. Failed calls are never retried.
type ProviderGateway struct {
	providers []repository.AIProvider
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *infra.Metrics
}

// NewProviderGateway rejects registries where one provider's prefix is a
// prefix of another provider's, since dispatch would be ambiguous.
func NewProviderGateway(providers []repository.AIProvider, timeout time.Duration, logger *slog.Logger, metrics *infra.Metrics) (*ProviderGateway, error) {
	owner := make(map[string]string)
	for _, p := range providers {
		if len(p.Prefixes()) == 0 {
			return nil, errors.Newf("provider %s claims no model prefix", p.Name())
		}
		for _, prefix := range p.Prefixes() {
			if prefix == "" {
				return nil, errors.Newf("provider %s has an empty model prefix", p.Name())
			}
			for other, name := range owner {
				if name == p.Name() {
					continue
				}
				if strings.HasPrefix(prefix, other) || strings.HasPrefix(other, prefix) {
					return nil, errors.Newf("model prefix %q of provider %s overlaps %q of provider %s", prefix, p.Name(), other, name)
				}
			}
			owner[prefix] = p.Name()
		}
	}
	return &ProviderGateway{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Resolve returns the provider serving model.
func (g *ProviderGateway) Resolve(model string) (repository.AIProvider, error) {
	for _, p := range g.providers {
		if slices.ContainsFunc(p.Prefixes(), func(prefix string) bool {
			return strings.HasPrefix(model, prefix)
		}) {
			return p, nil
		}
	}
	return nil, &entity.UnsupportedModelError{Model: model}
}

func (g *ProviderGateway) Query(ctx context.Context, model, prompt string) (*entity.GenerationResult, error) {
	p, err := g.Resolve(model)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.Generate(ctx, model, prompt)
	elapsed := time.Since(start)
	g.metrics.ObserveProviderCall(p.Name(), elapsed, err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrapf(err, "%s did not answer within %s", p.Name(), g.timeout)
		}
		g.logger.WarnContext(ctx, "provider call failed", "provider", p.Name(), "model", model, "error", err)
		return nil, &entity.ProviderError{Model: model, Err: err}
	}

	return &entity.GenerationResult{
		Text:      text,
		LatencyMs: float64(elapsed) / float64(time.Millisecond),
	}, nil
}
