package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/chatstream"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ chatstream.Provider = (*Client)(nil)

// Client implements [chatstream.Provider] for the Google Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	backend genai.Backend
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model used when the arguments name none.
// Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBackend selects the Gemini Developer API (default) or Vertex AI.
// Vertex AI reads its project and location from the environment.
func WithBackend(b genai.Backend) Option {
	return func(c *Client) { c.backend = b }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		model:   defaultModel,
		backend: genai.BackendGeminiAPI,
	}
	for _, o := range opts {
		o(c)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: c.backend,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// ChatStream sends a streaming request to the Gemini API and returns a
// [chatstream.Stream] of OpenAI-shaped chunks.
func (c *Client) ChatStream(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error) {
	if args.Model == "" {
		args.Model = c.model
	}
	if err := args.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	system, contents := ConvertMessages(args.Messages)
	config := BuildConfig(args)
	config.SystemInstruction = system

	seq := c.client.Models.GenerateContentStream(ctx, args.Model, contents, config)
	return newStream(ctx, seq, args.Model), nil
}

// BuildConfig maps sampling parameters onto a generation config.
// Exported for testing.
func BuildConfig(args chatstream.ChatArguments) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		StopSequences: args.Stop,
	}
	if args.Temperature != nil {
		config.Temperature = float32Ptr(*args.Temperature)
	}
	if args.TopP != nil {
		config.TopP = float32Ptr(*args.TopP)
	}
	if args.PresencePenalty != nil {
		config.PresencePenalty = float32Ptr(*args.PresencePenalty)
	}
	if args.FrequencyPenalty != nil {
		config.FrequencyPenalty = float32Ptr(*args.FrequencyPenalty)
	}
	if args.MaxTokens != nil {
		config.MaxOutputTokens = int32(*args.MaxTokens)
	}
	if args.N != nil {
		config.CandidateCount = int32(*args.N)
	}
	if args.ResponseFormat != nil && args.ResponseFormat.Type == chatstream.ResponseFormatJSONObject {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

func float32Ptr(v float64) *float32 {
	f := float32(v)
	return &f
}

// ConvertMessages splits chat messages into a system instruction and Gemini
// contents. System messages are merged into the instruction in order;
// assistant turns use the "model" role. Exported for testing.
func ConvertMessages(msgs []chatstream.Message) (*genai.Content, []*genai.Content) {
	var (
		system   *genai.Content
		contents []*genai.Content
	)
	for _, m := range msgs {
		switch m.Role {
		case chatstream.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})
		case chatstream.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	return system, contents
}
