package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/gemini"
	"github.com/fwojciec/chatstream/openai"
	"github.com/fwojciec/chatstream/yaml"
)

// settings is the effective configuration after flags are applied on top of
// the selected profile.
type settings struct {
	provider    string
	baseURL     string
	apiKey      string
	model       string
	system      string
	temperature *float64
	maxTokens   *int
}

// resolveSettings applies flags over the selected profile. Env vars are
// passed in through getenv, which is only bound to os.Getenv in main.
func resolveSettings(cfg yaml.Config, o options, getenv func(string) string) (settings, error) {
	p, err := cfg.Profile(o.profile)
	if err != nil {
		return settings{}, err
	}
	s := settings{
		provider:    p.Provider,
		baseURL:     p.BaseURL,
		model:       p.Model,
		system:      p.SystemPrompt,
		temperature: p.Temperature,
		maxTokens:   p.MaxTokens,
	}
	keyEnv := p.APIKeyEnv
	if o.provider != "" && o.provider != p.Provider {
		// The profile's endpoint and model belong to another provider.
		s.provider = o.provider
		s.baseURL = ""
		s.model = ""
		keyEnv = defaultKeyEnv(o.provider)
	}
	if o.baseURL != "" {
		s.baseURL = o.baseURL
	}
	if o.model != "" {
		s.model = o.model
	}
	if o.system != "" {
		s.system = o.system
	}
	if o.temperature != nil {
		s.temperature = o.temperature
	}
	if o.maxTokens != nil {
		s.maxTokens = o.maxTokens
	}

	// Explicit flag overrides the profile's env var.
	s.apiKey = o.apiKey
	if s.apiKey == "" && keyEnv != "" {
		s.apiKey = getenv(keyEnv)
	}

	switch s.provider {
	case yaml.ProviderOpenAI:
		// Local OpenAI-compatible servers run without a key.
	case yaml.ProviderGemini:
		if s.apiKey == "" {
			return settings{}, fmt.Errorf("gemini: %w (use -api-key or %s)", chatstream.ErrNoAPIKey, keyEnv)
		}
	default:
		return settings{}, fmt.Errorf("unknown provider %q: must be %q or %q", s.provider, yaml.ProviderOpenAI, yaml.ProviderGemini)
	}
	return s, nil
}

func defaultKeyEnv(provider string) string {
	switch provider {
	case yaml.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case yaml.ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// arguments returns chat arguments for conv with the sampling settings applied.
func (s settings) arguments(conv chatstream.Conversation) chatstream.ChatArguments {
	args := conv.Arguments(s.model)
	args.Temperature = s.temperature
	args.MaxTokens = s.maxTokens
	return args
}

// newProvider constructs the provider named by s.
func newProvider(ctx context.Context, s settings, logger *slog.Logger) (chatstream.Provider, error) {
	switch s.provider {
	case yaml.ProviderOpenAI:
		opts := []openai.Option{openai.WithLogger(logger)}
		if s.baseURL != "" {
			opts = append(opts, openai.WithBaseURL(s.baseURL))
		}
		return openai.New(s.apiKey, opts...), nil
	case yaml.ProviderGemini:
		opts := []gemini.Option{}
		if s.model != "" {
			opts = append(opts, gemini.WithModel(s.model))
		}
		client, err := gemini.New(ctx, s.apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.provider)
	}
}
