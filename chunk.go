package chatstream

// ChatCompletionChunk is the payload of one streamed SSE frame.
type ChatCompletionChunk struct {
	ID                string        `json:"id"`
	Object            string        `json:"object,omitempty"`
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	Choices           []ChunkChoice `json:"choices"`
	SystemFingerprint *string       `json:"system_fingerprint,omitempty"`
	Usage             *Usage        `json:"usage,omitempty"` // only with stream_options.include_usage
}

// ChunkChoice carries the delta for one completion alternative.
type ChunkChoice struct {
	Delta        Delta   `json:"delta"`
	Index        int     `json:"index"`
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental content fragment of a choice. Content is absent
// on role-only and final chunks.
type Delta struct {
	Role    Role    `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Content returns choices[0].delta.content, or "" when it is absent.
func (c ChatCompletionChunk) Content() string {
	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == nil {
		return ""
	}
	return *c.Choices[0].Delta.Content
}

// FinishReason returns choices[0].finish_reason, or "" while generating.
func (c ChatCompletionChunk) FinishReason() string {
	if len(c.Choices) == 0 || c.Choices[0].FinishReason == nil {
		return ""
	}
	return *c.Choices[0].FinishReason
}

// String returns the displayable text of the chunk.
func (c ChatCompletionChunk) String() string {
	return c.Content()
}
