package chatstream

import "fmt"

// EmbeddingsArguments is the request body for the embeddings endpoint.
type EmbeddingsArguments struct {
	Model string `json:"model"`
	Input string `json:"input"`
	User  string `json:"user,omitempty"`
}

// NewEmbeddingsArguments returns arguments for model and input.
func NewEmbeddingsArguments(model, input string) EmbeddingsArguments {
	return EmbeddingsArguments{Model: model, Input: input}
}

// Validate checks universal constraints on EmbeddingsArguments.
func (a EmbeddingsArguments) Validate() error {
	if a.Model == "" {
		return fmt.Errorf("model is required: %w", ErrValidation)
	}
	if a.Input == "" {
		return fmt.Errorf("input is required: %w", ErrValidation)
	}
	return nil
}

// EmbeddingsResponse is the body returned by the embeddings endpoint.
type EmbeddingsResponse struct {
	Object string          `json:"object"`
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  Usage           `json:"usage"`
}

// EmbeddingData is one embedding vector.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}
