package client

import (
	"context"
	"sync"

	"llm-benchmark/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider talks to any vendor exposing the OpenAI chat completions
// API. Anthropic and Cohere are reached through their OpenAI-compatible
// endpoints by changing BaseURL.
type OpenAIProvider struct {
	name         string
	prefixes     []string
	baseURL      string
	apiKeySecret string
	secrets      repository.SecretProvider
	params       GenerationParams

	mu     sync.Mutex
	client *openai.Client
}

type OpenAIOptions struct {
	Name         string
	Prefixes     []string
	BaseURL      string
	APIKeySecret string
	Params       GenerationParams
}

func NewOpenAIProvider(opts OpenAIOptions, secrets repository.SecretProvider) *OpenAIProvider {
	return &OpenAIProvider{
		name:         opts.Name,
		prefixes:     opts.Prefixes,
		baseURL:      opts.BaseURL,
		apiKeySecret: opts.APIKeySecret,
		secrets:      secrets,
		params:       opts.Params,
	}
}

func (p *OpenAIProvider) Name() string       { return p.name }
func (p *OpenAIProvider) Prefixes() []string { return p.prefixes }

func (p *OpenAIProvider) getClient(ctx context.Context) (*openai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	apiKey, err := p.secrets.Secret(ctx, p.apiKeySecret)
	if err != nil {
		return nil, err
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// a failed call is reported as is; nothing retries it
		option.WithMaxRetries(0),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	p.client = openai.NewClient(opts...)
	return p.client, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	c, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(model)),
		MaxTokens:   openai.F(int64(p.params.MaxOutputTokens)),
		Temperature: openai.F(p.params.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.Newf("%s returned no choices for model %s", p.name, model)
	}
	return resp.Choices[0].Message.Content, nil
}
