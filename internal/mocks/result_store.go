package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"llm-benchmark/internal/domain/entity"
)

type ResultStore struct {
	mock.Mock
}

func (s *ResultStore) Append(ctx context.Context, key string, record entity.BenchmarkRecord) error {
	args := s.Called(ctx, key, record)
	return args.Error(0)
}

func (s *ResultStore) Patch(ctx context.Context, key string, match entity.RecordMatch, mutate func(*entity.BenchmarkRecord)) (int, error) {
	args := s.Called(ctx, key, match, mutate)
	return args.Int(0), args.Error(1)
}

func (s *ResultStore) ListAll(ctx context.Context) ([]entity.BenchmarkRecord, error) {
	args := s.Called(ctx)
	records, _ := args.Get(0).([]entity.BenchmarkRecord)
	return records, args.Error(1)
}

func (s *ResultStore) ListRecent(ctx context.Context, limit int) ([]entity.BenchmarkRecord, error) {
	args := s.Called(ctx, limit)
	records, _ := args.Get(0).([]entity.BenchmarkRecord)
	return records, args.Error(1)
}
