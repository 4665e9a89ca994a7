package chatstream

import "fmt"

// CompletionArguments is the request body for the legacy completions endpoint.
type CompletionArguments struct {
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	Suffix           string   `json:"suffix,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	N                *int     `json:"n,omitempty"`
	Logprobs         *int     `json:"logprobs,omitempty"`
	Echo             bool     `json:"echo,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	BestOf           *int     `json:"best_of,omitempty"`
	User             string   `json:"user,omitempty"`
}

// NewCompletionArguments returns arguments for model and prompt.
func NewCompletionArguments(model, prompt string) CompletionArguments {
	return CompletionArguments{Model: model, Prompt: prompt}
}

// Validate checks universal constraints on CompletionArguments.
func (a CompletionArguments) Validate() error {
	if a.Model == "" {
		return fmt.Errorf("model is required: %w", ErrValidation)
	}
	if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *a.Temperature, ErrValidation)
	}
	if a.Logprobs != nil && (*a.Logprobs < 0 || *a.Logprobs > 5) {
		return fmt.Errorf("logprobs must be in [0, 5], got %d: %w", *a.Logprobs, ErrValidation)
	}
	return nil
}

// CompletionResponse is the body returned by the legacy completions endpoint.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

// CompletionChoice is one legacy completion alternative.
type CompletionChoice struct {
	Text         string    `json:"text"`
	Index        int       `json:"index"`
	Logprobs     *Logprobs `json:"logprobs"`
	FinishReason string    `json:"finish_reason"`
}

// Logprobs holds token log probabilities when requested.
type Logprobs struct {
	Tokens        []string             `json:"tokens"`
	TokenLogprobs []float64            `json:"token_logprobs"`
	TopLogprobs   []map[string]float64 `json:"top_logprobs"`
	TextOffset    []int                `json:"text_offset"`
}

// String returns the text of the first choice.
func (r CompletionResponse) String() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}
