package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkRecordDecodesLegacyFeedback(t *testing.T) {
	testCases := []struct {
		name     string
		feedback string
		want     int
	}{
		{name: "integer", feedback: `5`, want: 5},
		{name: "fraction rounds up", feedback: `4.5`, want: 5},
		{name: "fraction rounds down", feedback: `3.2`, want: 3},
		{name: "numeric string", feedback: `"4"`, want: 4},
		{name: "free text", feedback: `"great"`, want: 0},
		{name: "null", feedback: `null`, want: 0},
		{name: "boolean", feedback: `true`, want: 0},
		{name: "object", feedback: `{"stars": 4}`, want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := `{"model_name": "gpt-4o", "prompt": "X", "response": "r", "latency_ms": 12.5, "user_feedback": ` + tc.feedback + `, "created_at": "2025-01-01T00:00:00.000000Z"}`

			var r BenchmarkRecord
			require.NoError(t, json.Unmarshal([]byte(data), &r))
			assert.Equal(t, tc.want, r.UserFeedback)
			assert.Equal(t, "gpt-4o", r.ModelName)
			assert.Equal(t, "X", r.Prompt)
			assert.Equal(t, 12.5, r.LatencyMs)
			assert.Equal(t, "2025-01-01T00:00:00.000000Z", r.CreatedAt)
		})
	}
}

func TestBenchmarkRecordMissingFeedback(t *testing.T) {
	var r BenchmarkRecord
	require.NoError(t, json.Unmarshal([]byte(`{"model_name": "gpt-4o"}`), &r))
	assert.Equal(t, 0, r.UserFeedback)
}

func TestBenchmarkRecordRejectsNonObject(t *testing.T) {
	var r BenchmarkRecord
	assert.Error(t, json.Unmarshal([]byte(`"oops"`), &r))
}

func TestNewBenchmarkRecordRoundTrip(t *testing.T) {
	now := time.Date(2025, 2, 20, 10, 11, 12, 123456789, time.UTC)
	want := NewBenchmarkRecord("gpt-4o", "What is Generative AI?", "AI is...", 120.5, now)
	want.UserFeedback = 4
	assert.Equal(t, "2025-02-20T10:11:12.123456Z", want.CreatedAt)

	data, err := json.Marshal(want)
	require.NoError(t, err)
	var got BenchmarkRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}
