package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"llm-benchmark/internal/domain/docpath"
	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const defaultCompareParallelism = 4

type Orchestrator struct {
	gateway     repository.Gateway
	store       repository.ResultStore
	keys        docpath.Deriver
	logger      *slog.Logger
	parallelism int
	now         func() time.Time
}

func NewOrchestrator(gw repository.Gateway, store repository.ResultStore, keys docpath.Deriver, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:     gw,
		store:       store,
		keys:        keys,
		logger:      logger,
		parallelism: defaultCompareParallelism,
		now:         time.Now,
	}
}

// WithParallelism bounds how many provider calls CompareModels runs at once.
func (u *Orchestrator) WithParallelism(n int) *Orchestrator {
	if n > 0 {
		u.parallelism = n
	}
	return u
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RunBenchmark queries one model and records the run. A failed provider call
// is returned as is and nothing is written.
func (u *Orchestrator) RunBenchmark(ctx context.Context, req entity.BenchmarkRequest) (*entity.BenchmarkResult, error) {
	if blank(req.ModelName) || blank(req.Prompt) {
		return nil, errors.Wrap(entity.ErrValidation, "missing model_name or prompt")
	}

	gen, err := u.gateway.Query(ctx, req.ModelName, req.Prompt)
	if err != nil {
		return nil, err
	}

	rec := entity.NewBenchmarkRecord(req.ModelName, req.Prompt, gen.Text, gen.LatencyMs, u.now())
	key := u.keys.Derive(req.Prompt)
	if err := u.store.Append(ctx, key, rec); err != nil {
		return nil, errors.Wrapf(err, "recording run of %s", req.ModelName)
	}

	u.logger.InfoContext(ctx, "benchmark recorded", "model", req.ModelName, "key", key, "latency_ms", gen.LatencyMs)
	return &entity.BenchmarkResult{
		Model:     rec.ModelName,
		Response:  rec.Response,
		LatencyMs: rec.LatencyMs,
	}, nil
}

// CompareModels runs the prompt against every model concurrently. Provider
// failures are reported per model and not recorded; a storage failure aborts
// the comparison. Appends to the shared document are serialized by the store.
func (u *Orchestrator) CompareModels(ctx context.Context, req entity.CompareRequest) ([]entity.CompareResult, error) {
	if blank(req.Prompt) || len(req.Models) == 0 {
		return nil, errors.Wrap(entity.ErrValidation, "missing models or prompt")
	}
	for _, m := range req.Models {
		if blank(m) {
			return nil, errors.Wrap(entity.ErrValidation, "empty model name")
		}
	}

	key := u.keys.Derive(req.Prompt)
	results := make([]entity.CompareResult, len(req.Models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.parallelism)
	for i, model := range req.Models {
		g.Go(func() error {
			results[i].Model = model
			gen, err := u.gateway.Query(gctx, model, req.Prompt)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Response = gen.Text
			results[i].LatencyMs = gen.LatencyMs

			rec := entity.NewBenchmarkRecord(model, req.Prompt, gen.Text, gen.LatencyMs, u.now())
			if err := u.store.Append(gctx, key, rec); err != nil {
				return errors.Wrapf(err, "recording run of %s", model)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyFeedbackBatch patches user_feedback entry by entry and stops at the
// first failing entry. Entries applied before the failure stay applied; the
// returned count says how many.
func (u *Orchestrator) ApplyFeedbackBatch(ctx context.Context, entries []entity.FeedbackEntry) (int, error) {
	if len(entries) == 0 {
		return 0, errors.Wrap(entity.ErrValidation, "expected a non-empty list of feedback entries")
	}

	for i, e := range entries {
		if blank(e.ModelName) || blank(e.Prompt) || e.UserFeedback == nil {
			return i, &entity.FeedbackBatchError{
				Index: i,
				Entry: e,
				Err:   errors.Wrap(entity.ErrValidation, "model_name, prompt and user_feedback are required"),
			}
		}

		feedback := *e.UserFeedback
		key := u.keys.Derive(e.Prompt)
		_, err := u.store.Patch(ctx, key,
			entity.RecordMatch{Field: "model_name", Value: e.ModelName},
			func(r *entity.BenchmarkRecord) { r.UserFeedback = feedback },
		)
		if err != nil {
			u.logger.WarnContext(ctx, "feedback batch aborted", "index", i, "applied", i, "error", err)
			return i, &entity.FeedbackBatchError{Index: i, Entry: e, Err: err}
		}
	}
	return len(entries), nil
}

func (u *Orchestrator) RecentResults(ctx context.Context, limit int) ([]entity.BenchmarkRecord, error) {
	return u.store.ListRecent(ctx, limit)
}
