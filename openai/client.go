package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/sse"
)

// Interface compliance check.
var _ chatstream.Provider = (*Client)(nil)

// Client talks to an OpenAI-compatible HTTP API.
type Client struct {
	apiKey       string
	organization string
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	readSize     int
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest and
// for compatible servers.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. Its Timeout applies to
// non-streaming calls only; streams are bounded by their context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request tracing and stream anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(c *Client) { c.organization = org }
}

// WithReadSize sets the size of transport reads while streaming.
func WithReadSize(n int) Option {
	return func(c *Client) { c.readSize = n }
}

// New creates a new [Client]. An empty apiKey sends no Authorization header,
// which local servers accept.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		readSize:   sse.DefaultReadSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CallOption configures a single request.
type CallOption func(*callOptions)

type callOptions struct {
	path string
}

// WithPath overrides the endpoint path of one call, for servers that mount
// the API elsewhere.
func WithPath(path string) CallOption {
	return func(o *callOptions) { o.path = path }
}

func resolve(path string, opts []CallOption) string {
	o := callOptions{path: path}
	for _, opt := range opts {
		opt(&o)
	}
	return o.path
}

// ListModels returns the models available to the key.
func (c *Client) ListModels(ctx context.Context, opts ...CallOption) ([]chatstream.Model, error) {
	var resp chatstream.ListModelsResponse
	if err := c.do(ctx, http.MethodGet, resolve(modelsPath, opts), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateChat requests a complete, non-streamed chat completion.
func (c *Client) CreateChat(ctx context.Context, args chatstream.ChatArguments, opts ...CallOption) (chatstream.ChatCompletion, error) {
	args.Stream = false
	args.StreamOptions = nil
	if err := args.Validate(); err != nil {
		return chatstream.ChatCompletion{}, fmt.Errorf("openai: %w", err)
	}
	var resp chatstream.ChatCompletion
	if err := c.do(ctx, http.MethodPost, resolve(chatPath, opts), args, &resp); err != nil {
		return chatstream.ChatCompletion{}, err
	}
	return resp, nil
}

// CreateChatStream requests a streamed chat completion. Streaming is forced
// on regardless of args.Stream. Cancelling ctx aborts the stream.
func (c *Client) CreateChatStream(ctx context.Context, args chatstream.ChatArguments, opts ...CallOption) (chatstream.Stream, error) {
	args.Stream = true
	if err := args.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, resolve(chatPath, opts), args)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The context bounds the stream, not the client timeout.
	streamClient := &http.Client{
		Transport:     c.httpClient.Transport,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
	}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w: %w", chatstream.ErrTransport, err)
	}
	c.logger.Debug("openai: stream opened", "path", req.URL.Path, "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return sse.NewStream(ctx, sse.NewReaderSource(resp.Body, c.readSize), sse.WithLogger(c.logger)), nil
}

// ChatStream implements [chatstream.Provider].
func (c *Client) ChatStream(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error) {
	return c.CreateChatStream(ctx, args)
}

// CreateCompletion requests a legacy text completion.
func (c *Client) CreateCompletion(ctx context.Context, args chatstream.CompletionArguments, opts ...CallOption) (chatstream.CompletionResponse, error) {
	if err := args.Validate(); err != nil {
		return chatstream.CompletionResponse{}, fmt.Errorf("openai: %w", err)
	}
	var resp chatstream.CompletionResponse
	if err := c.do(ctx, http.MethodPost, resolve(completionsPath, opts), args, &resp); err != nil {
		return chatstream.CompletionResponse{}, err
	}
	return resp, nil
}

// CreateEmbeddings requests an embedding vector for args.Input.
func (c *Client) CreateEmbeddings(ctx context.Context, args chatstream.EmbeddingsArguments, opts ...CallOption) (chatstream.EmbeddingsResponse, error) {
	if err := args.Validate(); err != nil {
		return chatstream.EmbeddingsResponse{}, fmt.Errorf("openai: %w", err)
	}
	var resp chatstream.EmbeddingsResponse
	if err := c.do(ctx, http.MethodPost, resolve(embeddingsPath, opts), args, &resp); err != nil {
		return chatstream.EmbeddingsResponse{}, err
	}
	return resp, nil
}

// CreateImage generates images and returns, per image, either its URL or
// its base64-encoded data, whichever the server sent. Unset model, count,
// size and quality get gpt-image-1 defaults.
func (c *Client) CreateImage(ctx context.Context, args chatstream.ImageArguments, opts ...CallOption) ([]string, error) {
	if err := args.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if args.Model == "" {
		args.Model = defaultImageModel
	}
	if args.N == nil {
		n := 1
		args.N = &n
	}
	if args.Size == "" {
		args.Size = defaultImageSize
	}
	if args.Quality == "" {
		args.Quality = defaultImageQuality
	}
	var resp chatstream.ImageResponse
	if err := c.do(ctx, http.MethodPost, resolve(imagesPath, opts), args, &resp); err != nil {
		return nil, err
	}
	images := make([]string, len(resp.Data))
	for i, obj := range resp.Data {
		images[i] = obj.Value()
	}
	return images, nil
}

// do performs a JSON round trip. A nil in sends no body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %w: %w", chatstream.ErrTransport, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("openai: response", "method", method, "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: %w: %w", chatstream.ErrDecode, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
	return req, nil
}
