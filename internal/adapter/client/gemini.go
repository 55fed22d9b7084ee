package client

import (
	"context"
	"sync"

	"llm-benchmark/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

const noResponse = "No response"

// GeminiProvider serves Gemini models through genai, either on Vertex AI or
// on the Gemini API. The genai client is created on the first call so that
// its setup is part of the measured latency.
type GeminiProvider struct {
	name     string
	prefixes []string
	config   genai.ClientConfig
	secrets  repository.SecretProvider
	apiKey   string // secret name, Gemini API backend only
	params   GenerationParams

	mu     sync.Mutex
	client *genai.Client
}

type GeminiOptions struct {
	Name     string
	Prefixes []string
	// Project and Location select the Vertex AI backend when Project is set.
	Project  string
	Location string
	// APIKeySecret names the secret holding the Gemini API key.
	APIKeySecret string
	BaseURL      string
	Params       GenerationParams
}

func NewGeminiProvider(opts GeminiOptions, secrets repository.SecretProvider) *GeminiProvider {
	cfg := genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	}
	if opts.Project != "" {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	}
	return &GeminiProvider{
		name:     opts.Name,
		prefixes: opts.Prefixes,
		config:   cfg,
		secrets:  secrets,
		apiKey:   opts.APIKeySecret,
		params:   opts.Params,
	}
}

func NewGeminiProviderFromClient(c *genai.Client, name string, prefixes []string, params GenerationParams) *GeminiProvider {
	return &GeminiProvider{
		name:     name,
		prefixes: prefixes,
		params:   params,
		client:   c,
	}
}

func (g *GeminiProvider) Name() string       { return g.name }
func (g *GeminiProvider) Prefixes() []string { return g.prefixes }

func (g *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cfg := g.config
	if cfg.Backend == genai.BackendGeminiAPI && g.apiKey != "" {
		key, err := g.secrets.Secret(ctx, g.apiKey)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = key
	}
	c, err := genai.NewClient(ctx, &cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init genai client")
	}
	g.client = c
	return c, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	result, err := c.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.params.Temperature)),
		MaxOutputTokens: int32(g.params.MaxOutputTokens),
	})
	if err != nil {
		return "", err
	}
	if result == nil {
		return noResponse, nil
	}
	text := result.Text()
	if text == "" {
		return noResponse, nil
	}
	return text, nil
}
