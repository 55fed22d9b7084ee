package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/domain/repository"
	"llm-benchmark/internal/infra"

	"github.com/cockroachdb/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// BlobResultStore keeps one JSON array of records per derived prompt key in
// an object bucket. Append and Patch are read-modify-write cycles guarded by
// a per-key lock; ListAll takes no lock and may observe documents written at
// different times.
type BlobResultStore struct {
	bucket  *blob.Bucket
	prefix  string
	locker  repository.Locker
	logger  *slog.Logger
	metrics *infra.Metrics
}

func NewBlobResultStore(bucket *blob.Bucket, prefix string, locker repository.Locker, logger *slog.Logger, metrics *infra.Metrics) *BlobResultStore {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &BlobResultStore{
		bucket:  bucket,
		prefix:  prefix,
		locker:  locker,
		logger:  logger,
		metrics: metrics,
	}
}

func unavailable(err error, format string, args ...any) error {
	return errors.Wrapf(errors.Mark(err, entity.ErrStorageUnavailable), format, args...)
}

// read returns the records stored at key. A missing object is not an error:
// exists is false and the slice is empty.
func (s *BlobResultStore) read(ctx context.Context, key string) (records []entity.BenchmarkRecord, exists bool, err error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, false, nil
		}
		return nil, false, unavailable(err, "reading document %s", key)
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, &entity.CorruptDocumentError{Key: key, Err: err}
	}
	return records, true, nil
}

func (s *BlobResultStore) write(ctx context.Context, key string, records []entity.BenchmarkRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding document %s", key)
	}
	err = s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: "application/json"})
	if err != nil {
		return unavailable(err, "writing document %s", key)
	}
	return nil
}

func (s *BlobResultStore) lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	unlock, err := s.locker.Lock(ctx, key)
	s.metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		return nil, errors.Wrapf(err, "locking document %s", key)
	}
	return unlock, nil
}

// Append adds record at the end of the document at key, creating the
// document if it does not exist yet.
func (s *BlobResultStore) Append(ctx context.Context, key string, record entity.BenchmarkRecord) (err error) {
	defer func() { s.metrics.ObserveStoreOp("append", err) }()

	unlock, err := s.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	records, _, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	records = append(records, record)
	if err := s.write(ctx, key, records); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "appended benchmark record", "key", key, "model", record.ModelName, "records", len(records))
	return nil
}

// Patch mutates every record selected by match. It fails with
// DocumentNotFoundError when the document is absent and NoMatchingRecordError
// when nothing matched; in both cases nothing is written.
func (s *BlobResultStore) Patch(ctx context.Context, key string, match entity.RecordMatch, mutate func(*entity.BenchmarkRecord)) (n int, err error) {
	defer func() { s.metrics.ObserveStoreOp("patch", err) }()

	if _, ok := match.Matches(entity.BenchmarkRecord{}); !ok {
		return 0, errors.Wrapf(entity.ErrValidation, "field %q cannot be matched", match.Field)
	}

	unlock, err := s.lock(ctx, key)
	if err != nil {
		return 0, err
	}
	defer unlock()

	records, exists, err := s.read(ctx, key)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, &entity.DocumentNotFoundError{Key: key}
	}

	for i := range records {
		if matched, _ := match.Matches(records[i]); matched {
			mutate(&records[i])
			n++
		}
	}
	if n == 0 {
		return 0, &entity.NoMatchingRecordError{Key: key, Field: match.Field, Value: match.Value}
	}

	if err := s.write(ctx, key, records); err != nil {
		return 0, err
	}
	return n, nil
}

// ListAll flattens every document under the prefix, in key order. A document
// that cannot be parsed is logged and skipped; failing to read one fails the
// whole listing.
func (s *BlobResultStore) ListAll(ctx context.Context) (all []entity.BenchmarkRecord, err error) {
	defer func() { s.metrics.ObserveStoreOp("list", err) }()

	iter := s.bucket.List(&blob.ListOptions{Prefix: s.prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, unavailable(err, "listing documents under %s", s.prefix)
		}
		if obj.IsDir {
			continue
		}

		records, _, err := s.read(ctx, obj.Key)
		var corrupt *entity.CorruptDocumentError
		if errors.As(err, &corrupt) {
			s.logger.WarnContext(ctx, "skipping unparseable result document", "key", obj.Key, "error", err)
			s.metrics.SkippedDocument()
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// ListRecent returns at most limit records, newest created_at first. Records
// with equal timestamps keep their listing order; an empty created_at sorts
// last.
func (s *BlobResultStore) ListRecent(ctx context.Context, limit int) ([]entity.BenchmarkRecord, error) {
	if limit <= 0 {
		return nil, errors.Wrapf(entity.ErrValidation, "limit must be positive, got %d", limit)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(all, func(a, b entity.BenchmarkRecord) int {
		return strings.Compare(b.CreatedAt, a.CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
