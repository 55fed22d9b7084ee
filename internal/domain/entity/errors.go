package entity

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base error kinds, each rendered with one HTTP status code.
var (
	// ErrValidation is rendered with 400.
	ErrValidation = errors.New("invalid request parameters")

	// ErrNotFound is rendered with 404.
	ErrNotFound = errors.New("the requested resource was not found")

	// ErrStorageUnavailable is rendered with 500. The result store backend is
	// unreachable or refused access; the store never retries internally.
	ErrStorageUnavailable = errors.New("result storage is unavailable")

	// ErrProvider is rendered with 500 and the literal provider message.
	ErrProvider = errors.New("model provider call failed")
)

// UnsupportedModelError is returned when no provider claims the model
// identifier. It is a local classification failure and is never retried.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model: %q", e.Model)
}

func (e *UnsupportedModelError) Is(target error) bool {
	return target == ErrValidation
}

// ProviderError wraps any transport or API failure of a provider.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// DocumentNotFoundError means no document exists under Key.
type DocumentNotFoundError struct {
	Key string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("no document found at %s", e.Key)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NoMatchingRecordError means the document exists but holds no record with
// the requested field value.
type NoMatchingRecordError struct {
	Key   string
	Field string
	Value string
}

func (e *NoMatchingRecordError) Error() string {
	return fmt.Sprintf("no matching record found for %s=%q in %s", e.Field, e.Value, e.Key)
}

func (e *NoMatchingRecordError) Is(target error) bool {
	return target == ErrNotFound
}

// CorruptDocumentError means the stored object is not a JSON array of
// records. Mutations refuse to overwrite it.
type CorruptDocumentError struct {
	Key string
	Err error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("document %s is not a valid record list: %v", e.Key, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

// FeedbackBatchError identifies the entry that aborted a feedback batch.
// Entries before Index were applied and stay applied.
type FeedbackBatchError struct {
	Index int
	Entry FeedbackEntry
	Err   error
}

func (e *FeedbackBatchError) Error() string {
	return fmt.Sprintf("feedback entry %d (model %q, prompt %q): %v", e.Index, e.Entry.ModelName, e.Entry.Prompt, e.Err)
}

func (e *FeedbackBatchError) Unwrap() error { return e.Err }
