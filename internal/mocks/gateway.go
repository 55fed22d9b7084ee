package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"llm-benchmark/internal/domain/entity"
)

type Gateway struct {
	mock.Mock
}

func (g *Gateway) Query(ctx context.Context, model, prompt string) (*entity.GenerationResult, error) {
	args := g.Called(ctx, model, prompt)
	res, _ := args.Get(0).(*entity.GenerationResult)
	return res, args.Error(1)
}

type AIProvider struct {
	mock.Mock
	ProviderName     string
	ProviderPrefixes []string
}

func (p *AIProvider) Name() string       { return p.ProviderName }
func (p *AIProvider) Prefixes() []string { return p.ProviderPrefixes }

func (p *AIProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	args := p.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}
