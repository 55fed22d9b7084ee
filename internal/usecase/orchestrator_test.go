package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"llm-benchmark/internal/adapter/store"
	"llm-benchmark/internal/domain/docpath"
	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/mocks"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

type OrchestratorTestSuite struct {
	suite.Suite
	gateway *mocks.Gateway
	bucket  *blob.Bucket
	store   *store.BlobResultStore
	keys    docpath.Deriver
	now     time.Time
	ctx     context.Context
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.gateway = new(mocks.Gateway)
	suite.bucket = memblob.OpenBucket(nil)
	keys, err := docpath.NewDeriver(docpath.DefaultPrefix, docpath.SchemeReadable)
	suite.Require().NoError(err)
	suite.keys = keys
	suite.store = store.NewBlobResultStore(suite.bucket, keys.Prefix(), store.NewMemoryLocker(), discardLogger(), nil)
	suite.now = time.Date(2025, 2, 20, 10, 11, 12, 123456000, time.UTC)
}

func (suite *OrchestratorTestSuite) TearDownTest() {
	suite.bucket.Close()
}

func (suite *OrchestratorTestSuite) makeUsecase() *Orchestrator {
	u := NewOrchestrator(suite.gateway, suite.store, suite.keys, discardLogger())
	u.now = func() time.Time { return suite.now }
	return u
}

func (suite *OrchestratorTestSuite) document(prompt string) []entity.BenchmarkRecord {
	all, err := suite.store.ListAll(suite.ctx)
	suite.Require().NoError(err)
	var out []entity.BenchmarkRecord
	for _, r := range all {
		if suite.keys.Derive(r.Prompt) == suite.keys.Derive(prompt) {
			out = append(out, r)
		}
	}
	return out
}

func (suite *OrchestratorTestSuite) TestRunBenchmark() {
	suite.gateway.On("Query", mock.Anything, "gpt-4o", "What is Generative AI?").
		Return(&entity.GenerationResult{Text: "AI is...", LatencyMs: 120.5}, nil)

	res, err := suite.makeUsecase().RunBenchmark(suite.ctx, entity.BenchmarkRequest{
		ModelName: "gpt-4o",
		Prompt:    "What is Generative AI?",
	})

	suite.Require().NoError(err)
	suite.Equal(&entity.BenchmarkResult{Model: "gpt-4o", Response: "AI is...", LatencyMs: 120.5}, res)
	suite.Equal([]entity.BenchmarkRecord{{
		ModelName: "gpt-4o",
		Prompt:    "What is Generative AI?",
		Response:  "AI is...",
		LatencyMs: 120.5,
		CreatedAt: "2025-02-20T10:11:12.123456Z",
	}}, suite.document("What is Generative AI?"))
	suite.gateway.AssertExpectations(suite.T())
}

func (suite *OrchestratorTestSuite) TestRunBenchmarkAppendsOneRecordPerRun() {
	suite.gateway.On("Query", mock.Anything, mock.Anything, "X").
		Return(&entity.GenerationResult{Text: "ok", LatencyMs: 1}, nil)

	u := suite.makeUsecase()
	for _, m := range []string{"gpt-4o", "claude-3-haiku", "gpt-4o"} {
		_, err := u.RunBenchmark(suite.ctx, entity.BenchmarkRequest{ModelName: m, Prompt: "X"})
		suite.Require().NoError(err)
	}
	suite.Len(suite.document("X"), 3)
}

func (suite *OrchestratorTestSuite) TestRunBenchmarkProviderFailureIsNotRecorded() {
	providerErr := &entity.ProviderError{Model: "gpt-4o", Err: errors.New("Rate limit reached")}
	suite.gateway.On("Query", mock.Anything, "gpt-4o", "X").
		Return(&entity.GenerationResult{Text: "first", LatencyMs: 3}, nil).Once()
	suite.gateway.On("Query", mock.Anything, "gpt-4o", "X").
		Return(nil, providerErr).Once()

	u := suite.makeUsecase()
	_, err := u.RunBenchmark(suite.ctx, entity.BenchmarkRequest{ModelName: "gpt-4o", Prompt: "X"})
	suite.Require().NoError(err)

	_, err = u.RunBenchmark(suite.ctx, entity.BenchmarkRequest{ModelName: "gpt-4o", Prompt: "X"})
	suite.ErrorIs(err, entity.ErrProvider)
	suite.Equal("Rate limit reached", err.Error())
	suite.Len(suite.document("X"), 1)
}

func (suite *OrchestratorTestSuite) TestRunBenchmarkValidation() {
	u := suite.makeUsecase()
	for _, req := range []entity.BenchmarkRequest{
		{ModelName: "", Prompt: "X"},
		{ModelName: "gpt-4o", Prompt: ""},
		{ModelName: "gpt-4o", Prompt: "   "},
	} {
		_, err := u.RunBenchmark(suite.ctx, req)
		suite.True(errors.Is(err, entity.ErrValidation))
	}
	suite.gateway.AssertNotCalled(suite.T(), "Query", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrchestratorTestSuite) TestCompareModels() {
	suite.gateway.On("Query", mock.Anything, "gpt-4o", "X").
		Return(&entity.GenerationResult{Text: "a", LatencyMs: 10}, nil)
	suite.gateway.On("Query", mock.Anything, "gemini-1.5-pro-002", "X").
		Return(&entity.GenerationResult{Text: "b", LatencyMs: 20}, nil)
	suite.gateway.On("Query", mock.Anything, "llama-3", "X").
		Return(nil, &entity.UnsupportedModelError{Model: "llama-3"})

	results, err := suite.makeUsecase().WithParallelism(3).CompareModels(suite.ctx, entity.CompareRequest{
		Models: []string{"gpt-4o", "gemini-1.5-pro-002", "llama-3"},
		Prompt: "X",
	})

	suite.Require().NoError(err)
	suite.Equal([]entity.CompareResult{
		{Model: "gpt-4o", Response: "a", LatencyMs: 10},
		{Model: "gemini-1.5-pro-002", Response: "b", LatencyMs: 20},
		{Model: "llama-3", Error: `unsupported model: "llama-3"`},
	}, results)
	suite.Len(suite.document("X"), 2)
}

func (suite *OrchestratorTestSuite) TestCompareModelsValidation() {
	u := suite.makeUsecase()
	_, err := u.CompareModels(suite.ctx, entity.CompareRequest{Prompt: "X"})
	suite.True(errors.Is(err, entity.ErrValidation))
	_, err = u.CompareModels(suite.ctx, entity.CompareRequest{Models: []string{"gpt-4o", ""}, Prompt: "X"})
	suite.True(errors.Is(err, entity.ErrValidation))
}

func (suite *OrchestratorTestSuite) seed(model, prompt string) {
	err := suite.store.Append(suite.ctx, suite.keys.Derive(prompt), entity.BenchmarkRecord{ModelName: model, Prompt: prompt})
	suite.Require().NoError(err)
}

func ptr(i int) *int { return &i }

func (suite *OrchestratorTestSuite) TestApplyFeedbackBatch() {
	suite.seed("gpt-4o", "X")
	suite.seed("claude-3-haiku", "X")
	suite.seed("gpt-4o", "X")
	suite.seed("command-r", "Y")

	n, err := suite.makeUsecase().ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "X", UserFeedback: ptr(5)},
		{ModelName: "command-r", Prompt: "Y", UserFeedback: ptr(2)},
	})
	suite.Require().NoError(err)
	suite.Equal(2, n)

	x := suite.document("X")
	suite.Equal([]int{5, 0, 5}, []int{x[0].UserFeedback, x[1].UserFeedback, x[2].UserFeedback})
	suite.Equal(2, suite.document("Y")[0].UserFeedback)
}

func (suite *OrchestratorTestSuite) TestApplyFeedbackBatchFailsFast() {
	suite.seed("gpt-4o", "A")
	suite.seed("gpt-4o", "C")

	n, err := suite.makeUsecase().ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "A", UserFeedback: ptr(4)},
		{ModelName: "gpt-4o", Prompt: "B", UserFeedback: ptr(4)},
		{ModelName: "gpt-4o", Prompt: "C", UserFeedback: ptr(4)},
	})

	suite.Equal(1, n)
	var batchErr *entity.FeedbackBatchError
	suite.Require().True(errors.As(err, &batchErr))
	suite.Equal(1, batchErr.Index)
	suite.Equal("B", batchErr.Entry.Prompt)
	suite.True(errors.Is(err, entity.ErrNotFound))

	suite.Equal(4, suite.document("A")[0].UserFeedback)
	suite.Equal(0, suite.document("C")[0].UserFeedback)
}

func (suite *OrchestratorTestSuite) TestApplyFeedbackBatchNoMatchingRecord() {
	suite.seed("claude-3-haiku", "X")

	_, err := suite.makeUsecase().ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "X", UserFeedback: ptr(5)},
	})
	var noMatch *entity.NoMatchingRecordError
	suite.True(errors.As(err, &noMatch))
	suite.True(errors.Is(err, entity.ErrNotFound))
}

func (suite *OrchestratorTestSuite) TestApplyFeedbackBatchMissingDocument() {
	_, err := suite.makeUsecase().ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "X", UserFeedback: ptr(5)},
	})
	var batchErr *entity.FeedbackBatchError
	suite.Require().True(errors.As(err, &batchErr))
	suite.Equal(0, batchErr.Index)
	suite.Equal("gpt-4o", batchErr.Entry.ModelName)
	var notFound *entity.DocumentNotFoundError
	suite.True(errors.As(err, &notFound))
}

func (suite *OrchestratorTestSuite) TestApplyFeedbackBatchValidation() {
	suite.seed("gpt-4o", "X")
	u := suite.makeUsecase()

	_, err := u.ApplyFeedbackBatch(suite.ctx, nil)
	suite.True(errors.Is(err, entity.ErrValidation))

	n, err := u.ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "X", UserFeedback: ptr(1)},
		{ModelName: "gpt-4o", Prompt: "X"},
	})
	suite.Equal(1, n)
	suite.True(errors.Is(err, entity.ErrValidation))
	var batchErr *entity.FeedbackBatchError
	suite.Require().True(errors.As(err, &batchErr))
	suite.Equal(1, batchErr.Index)

	// a zero rating is a rating
	_, err = u.ApplyFeedbackBatch(suite.ctx, []entity.FeedbackEntry{
		{ModelName: "gpt-4o", Prompt: "X", UserFeedback: ptr(0)},
	})
	suite.NoError(err)
}

func (suite *OrchestratorTestSuite) TestConcurrentRunsOnOnePromptKeepEveryRecord() {
	suite.gateway.On("Query", mock.Anything, mock.Anything, "X").
		Return(&entity.GenerationResult{Text: "ok", LatencyMs: 1}, nil)
	u := suite.makeUsecase()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.RunBenchmark(suite.ctx, entity.BenchmarkRequest{ModelName: "gpt-4o", Prompt: "X"})
			assert.NoError(suite.T(), err)
		}()
	}
	wg.Wait()
	suite.Len(suite.document("X"), 20)
}

func TestOrchestrator(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestRunBenchmarkStorageFailure(t *testing.T) {
	gw := new(mocks.Gateway)
	st := new(mocks.ResultStore)
	keys, _ := docpath.NewDeriver("", "")
	gw.On("Query", mock.Anything, "gpt-4o", "X").Return(&entity.GenerationResult{Text: "ok", LatencyMs: 2}, nil)
	st.On("Append", mock.Anything, "benchmark_results/x.json", mock.AnythingOfType("entity.BenchmarkRecord")).
		Return(errors.Mark(errors.New("connection refused"), entity.ErrStorageUnavailable))

	_, err := NewOrchestrator(gw, st, keys, discardLogger()).
		RunBenchmark(context.Background(), entity.BenchmarkRequest{ModelName: "gpt-4o", Prompt: "X"})

	assert.True(t, errors.Is(err, entity.ErrStorageUnavailable))
	st.AssertExpectations(t)
}

func TestRecentResults(t *testing.T) {
	st := new(mocks.ResultStore)
	keys, _ := docpath.NewDeriver("", "")
	want := []entity.BenchmarkRecord{{ModelName: "gpt-4o"}}
	st.On("ListRecent", mock.Anything, 100).Return(want, nil)

	got, err := NewOrchestrator(new(mocks.Gateway), st, keys, discardLogger()).RecentResults(context.Background(), 100)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
