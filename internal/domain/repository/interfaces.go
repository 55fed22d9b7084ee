package repository

import (
	"context"

	"llm-benchmark/internal/domain/entity"
)

// ResultStore owns every read and write of result documents.
type ResultStore interface {
	Append(ctx context.Context, key string, record entity.BenchmarkRecord) error
	// Patch applies mutate to every record of the document at key selected by
	// match and returns how many records changed.
	Patch(ctx context.Context, key string, match entity.RecordMatch, mutate func(*entity.BenchmarkRecord)) (int, error)
	ListAll(ctx context.Context) ([]entity.BenchmarkRecord, error)
	ListRecent(ctx context.Context, limit int) ([]entity.BenchmarkRecord, error)
}

// AIProvider is a single model vendor. It generates text for one model
// identifier it claims through its prefixes.
type AIProvider interface {
	Name() string
	Prefixes() []string
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Gateway dispatches a model identifier to its provider and measures latency.
type Gateway interface {
	Query(ctx context.Context, model, prompt string) (*entity.GenerationResult, error)
}

// Locker hands out per-key mutual exclusion.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// SecretProvider returns named credentials.
type SecretProvider interface {
	Secret(ctx context.Context, name string) (string, error)
}
