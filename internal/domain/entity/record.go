package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CreatedAtLayout is the fixed-width UTC layout used for created_at, so that
// lexicographic order matches chronological order.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z"

// BenchmarkRecord is one measured provider run. Field names are the persisted
// JSON document format.
type BenchmarkRecord struct {
	ModelName       string  `json:"model_name"`
	LatencyMs       float64 `json:"latency_ms"`
	AccuracyScore   float64 `json:"accuracy_score"`
	CostPer1kTokens float64 `json:"cost_per_1k_tokens"`
	UserFeedback    int     `json:"user_feedback"`
	Prompt          string  `json:"prompt"`
	Response        string  `json:"response"`
	CreatedAt       string  `json:"created_at"`
}

// UnmarshalJSON accepts any JSON value as user_feedback, since older
// documents stored whatever clients sent. Numbers and numeric strings are
// rounded to the nearest integer; anything else reads as 0.
func (r *BenchmarkRecord) UnmarshalJSON(data []byte) error {
	type plain BenchmarkRecord
	var aux struct {
		plain
		UserFeedback any `json:"user_feedback"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = BenchmarkRecord(aux.plain)
	r.UserFeedback = feedbackValue(aux.UserFeedback)
	return nil
}

func feedbackValue(v any) int {
	switch x := v.(type) {
	case float64:
		return int(math.Round(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int(math.Round(f))
	default:
		return 0
	}
}

// NewBenchmarkRecord builds a record for a successful run with the
// placeholder metrics zeroed.
func NewBenchmarkRecord(model, prompt, response string, latencyMs float64, now time.Time) BenchmarkRecord {
	return BenchmarkRecord{
		ModelName: model,
		Prompt:    prompt,
		Response:  response,
		LatencyMs: latencyMs,
		CreatedAt: now.UTC().Format(CreatedAtLayout),
	}
}

// BenchmarkRequest is the input of a single run.
type BenchmarkRequest struct {
	ModelName string `json:"model_name"`
	Prompt    string `json:"prompt"`
}

// BenchmarkResult is what a caller gets back from a run.
type BenchmarkResult struct {
	Model     string  `json:"model"`
	Response  string  `json:"response"`
	LatencyMs float64 `json:"latency_ms"`
}

// CompareRequest runs the same prompt against several models.
type CompareRequest struct {
	Models []string `json:"models"`
	Prompt string   `json:"prompt"`
}

// CompareResult is the outcome for one model of a CompareRequest. Error is
// set instead of Response when the provider call failed.
type CompareResult struct {
	Model     string  `json:"model"`
	Response  string  `json:"response,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// FeedbackEntry is one element of a feedback batch. UserFeedback is a pointer
// so that an absent rating can be told apart from a zero rating.
type FeedbackEntry struct {
	ModelName    string `json:"model_name"`
	Prompt       string `json:"prompt"`
	UserFeedback *int   `json:"user_feedback"`
}

// GenerationResult is the normalized output of a provider call.
type GenerationResult struct {
	Text      string
	LatencyMs float64
}

// RecordMatch selects records whose JSON field Field equals Value.
type RecordMatch struct {
	Field string
	Value string
}

// Matches reports whether r satisfies m. Only the string fields of a record
// can be matched; ok is false for any other field name.
func (m RecordMatch) Matches(r BenchmarkRecord) (matched, ok bool) {
	var v string
	switch m.Field {
	case "model_name":
		v = r.ModelName
	case "prompt":
		v = r.Prompt
	case "response":
		v = r.Response
	case "created_at":
		v = r.CreatedAt
	default:
		return false, false
	}
	return v == m.Value, true
}
