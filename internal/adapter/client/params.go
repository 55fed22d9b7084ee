package client

// GenerationParams are the sampling settings sent to every provider.
type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
}

// DefaultGenerationParams match what the benchmark has always used.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Temperature: 0.7, MaxOutputTokens: 512}
}
