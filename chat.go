package chatstream

// ChatArguments is the request body for the chat completions endpoint.
// Optional fields are pointers or omitted when empty so that the server
// applies its own defaults.
type ChatArguments struct {
	Model            string            `json:"model"`
	Messages         []Message         `json:"messages"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	N                *int              `json:"n,omitempty"`
	Stream           bool              `json:"stream,omitempty"`
	StreamOptions    *StreamOptions    `json:"stream_options,omitempty"`
	Stop             []string          `json:"stop,omitempty"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	User             string            `json:"user,omitempty"`
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`
	ImageGeneration  *ImageGeneration  `json:"image_generation,omitempty"`
	SearchParameters *SearchParameters `json:"search_parameters,omitempty"` // xAI Grok live search
}

// NewChatArguments returns arguments for model with the given messages and
// every optional field unset.
func NewChatArguments(model string, messages []Message) ChatArguments {
	return ChatArguments{Model: model, Messages: messages}
}

// WithSearchParameters returns a copy of a with live search configured.
func (a ChatArguments) WithSearchParameters(p SearchParameters) ChatArguments {
	a.SearchParameters = &p
	return a
}

// StreamOptions controls streaming behavior.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ResponseFormatType selects the shape of the model output.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
)

// ResponseFormat is the response_format request field.
type ResponseFormat struct {
	Type ResponseFormatType `json:"type"`
}

// ImageGeneration configures image output on backends that support it.
type ImageGeneration struct {
	Quality      string `json:"quality,omitempty"`       // e.g. "standard", "hd"
	Size         string `json:"size,omitempty"`          // e.g. "1024x1024"
	OutputFormat string `json:"output_format,omitempty"` // e.g. "base64", "url"
}

// SearchMode controls live search.
type SearchMode string

const (
	SearchModeOn   SearchMode = "on"
	SearchModeOff  SearchMode = "off"
	SearchModeAuto SearchMode = "auto" // the model decides when to search
)

// SearchParameters configures live search. Dates are inclusive yyyy-mm-dd.
type SearchParameters struct {
	Mode            SearchMode `json:"mode"`
	ReturnCitations *bool      `json:"return_citations,omitempty"`
	FromDate        string     `json:"from_date,omitempty"`
	ToDate          string     `json:"to_date,omitempty"`
}

// NewSearchParameters returns parameters with the given mode only.
func NewSearchParameters(mode SearchMode) SearchParameters {
	return SearchParameters{Mode: mode}
}

// WithCitations returns a copy of p that requests citations.
func (p SearchParameters) WithCitations(yes bool) SearchParameters {
	p.ReturnCitations = &yes
	return p
}

// WithDateRange returns a copy of p restricted to [from, to].
func (p SearchParameters) WithDateRange(from, to string) SearchParameters {
	p.FromDate = from
	p.ToDate = to
	return p
}

// ChatCompletion is the non-streaming response of the chat completions
// endpoint. A streamed response is folded into the same shape by
// Accumulator.
type ChatCompletion struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// String returns the content of the first choice.
func (c ChatCompletion) String() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}
