package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/fwojciec/chatstream"
	csjson "github.com/fwojciec/chatstream/json"
	"github.com/fwojciec/chatstream/mock"
	"github.com/fwojciec/chatstream/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		o, err := parseFlags(nil, io.Discard)
		require.NoError(t, err)
		assert.Empty(t, o.prompt)
		assert.Nil(t, o.temperature)
		assert.Nil(t, o.maxTokens)
		assert.Empty(t, o.attach)
		assert.False(t, o.tui)
	})

	t.Run("all flags", func(t *testing.T) {
		t.Parallel()
		o, err := parseFlags([]string{
			"-provider", "gemini", "-model", "m", "-base-url", "http://localhost:11434",
			"-api-key", "k", "-config", "c.yaml", "-profile", "work", "-system", "be terse",
			"-temperature", "0.5", "-max-tokens", "64",
			"-attach", "*.go", "-attach", "docs/**/*.md",
			"-conversation", "conv.json", "-debug",
			"explain", "this",
		}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "gemini", o.provider)
		assert.Equal(t, "m", o.model)
		assert.Equal(t, "http://localhost:11434", o.baseURL)
		assert.Equal(t, "k", o.apiKey)
		assert.Equal(t, "c.yaml", o.configPath)
		assert.Equal(t, "work", o.profile)
		assert.Equal(t, "be terse", o.system)
		require.NotNil(t, o.temperature)
		assert.InDelta(t, 0.5, *o.temperature, 1e-9)
		require.NotNil(t, o.maxTokens)
		assert.Equal(t, 64, *o.maxTokens)
		assert.Equal(t, []string{"*.go", "docs/**/*.md"}, o.attach)
		assert.Equal(t, "conv.json", o.conversation)
		assert.True(t, o.debug)
		assert.Equal(t, "explain this", o.prompt)
	})

	t.Run("bad temperature", func(t *testing.T) {
		t.Parallel()
		_, err := parseFlags([]string{"-temperature", "warm"}, io.Discard)
		require.Error(t, err)
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		_, err := parseFlags([]string{"-h"}, io.Discard)
		assert.ErrorIs(t, err, flag.ErrHelp)
	})

	t.Run("markdown with tui is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := parseFlags([]string{"-tui", "-markdown"}, io.Discard)
		require.Error(t, err)
	})
}

func TestResolveSettings(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	t.Run("default profile", func(t *testing.T) {
		t.Parallel()
		s, err := resolveSettings(yaml.Defaults(), options{}, env(map[string]string{"OPENAI_API_KEY": "sk-env"}))
		require.NoError(t, err)
		assert.Equal(t, yaml.ProviderOpenAI, s.provider)
		assert.Equal(t, "https://api.openai.com", s.baseURL)
		assert.Equal(t, "gpt-4o-mini", s.model)
		assert.Equal(t, "sk-env", s.apiKey)
	})

	t.Run("flags override profile", func(t *testing.T) {
		t.Parallel()
		temp := 0.2
		o := options{model: "gpt-4o", baseURL: "http://localhost:8080", apiKey: "sk-flag", system: "sys", temperature: &temp}
		s, err := resolveSettings(yaml.Defaults(), o, env(map[string]string{"OPENAI_API_KEY": "sk-env"}))
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", s.model)
		assert.Equal(t, "http://localhost:8080", s.baseURL)
		assert.Equal(t, "sk-flag", s.apiKey)
		assert.Equal(t, "sys", s.system)
		assert.Equal(t, &temp, s.temperature)
	})

	t.Run("openai without key is allowed", func(t *testing.T) {
		t.Parallel()
		s, err := resolveSettings(yaml.Defaults(), options{}, env(nil))
		require.NoError(t, err)
		assert.Empty(t, s.apiKey)
	})

	t.Run("switching provider drops profile endpoint and model", func(t *testing.T) {
		t.Parallel()
		s, err := resolveSettings(yaml.Defaults(), options{provider: yaml.ProviderGemini},
			env(map[string]string{"GEMINI_API_KEY": "gk", "OPENAI_API_KEY": "sk"}))
		require.NoError(t, err)
		assert.Equal(t, yaml.ProviderGemini, s.provider)
		assert.Empty(t, s.model)
		assert.Empty(t, s.baseURL)
		assert.Equal(t, "gk", s.apiKey)
	})

	t.Run("gemini profile requires a key", func(t *testing.T) {
		t.Parallel()
		_, err := resolveSettings(yaml.Defaults(), options{profile: yaml.ProviderGemini}, env(nil))
		require.ErrorIs(t, err, chatstream.ErrNoAPIKey)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()
		_, err := resolveSettings(yaml.Defaults(), options{profile: "nope"}, env(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown profile")
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		_, err := resolveSettings(yaml.Defaults(), options{provider: "anthropic"}, env(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestSettingsArguments(t *testing.T) {
	t.Parallel()

	temp := 0.7
	maxTokens := 100
	s := settings{model: "m", temperature: &temp, maxTokens: &maxTokens}
	conv := chatstream.NewConversation("other", "be brief")
	conv.Append(chatstream.UserMessage("hi"))

	args := s.arguments(conv)
	assert.Equal(t, "m", args.Model)
	assert.Equal(t, &temp, args.Temperature)
	assert.Equal(t, &maxTokens, args.MaxTokens)
	assert.Equal(t, []chatstream.Message{
		chatstream.SystemMessage("be brief"),
		chatstream.UserMessage("hi"),
	}, args.Messages)
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	p, err := newProvider(context.Background(), settings{provider: yaml.ProviderOpenAI, baseURL: "http://localhost:1"}, newLogger(io.Discard, false))
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = newProvider(context.Background(), settings{provider: yaml.ProviderGemini, apiKey: "gk-test"}, newLogger(io.Discard, false))
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = newProvider(context.Background(), settings{provider: "nope"}, newLogger(io.Discard, false))
	require.Error(t, err)
}

func TestPrintReply(t *testing.T) {
	t.Parallel()

	t.Run("prints chunks as they arrive", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := providerOf(t, "Hel", "lo", "!")

		reply, err := printReply(context.Background(), p, chatstream.ChatArguments{Model: "m"}, &out, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hello!\n", out.String())
		assert.Equal(t, "Hello!", reply.String())
	})

	t.Run("strips terminal escapes", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := providerOf(t, "\x1b]0;pwned\x07safe", " \x1b[31mtext\x1b[0m")

		reply, err := printReply(context.Background(), p, chatstream.ChatArguments{}, &out, nil)
		require.NoError(t, err)
		assert.Equal(t, "safe text\n", out.String())
		assert.Contains(t, reply.String(), "\x1b", "the stored reply is not rewritten")
	})

	t.Run("renders once when a renderer is set", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := providerOf(t, "Hel", "lo")
		render := func(s string) string { return "<" + s + ">" }

		_, err := printReply(context.Background(), p, chatstream.ChatArguments{Model: "m"}, &out, render)
		require.NoError(t, err)
		assert.Equal(t, "<Hello>", out.String())
	})

	t.Run("open error", func(t *testing.T) {
		t.Parallel()
		p := &mock.Provider{
			ChatStreamFn: func(context.Context, chatstream.ChatArguments) (chatstream.Stream, error) {
				return nil, chatstream.ErrTransport
			},
		}
		_, err := printReply(context.Background(), p, chatstream.ChatArguments{}, io.Discard, nil)
		assert.ErrorIs(t, err, chatstream.ErrTransport)
	})

	t.Run("mid-stream error keeps partial reply", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		content := "partial"
		calls := 0
		closed := false
		stream := &mock.Stream{
			NextFn: func() (chatstream.ChatCompletionChunk, error) {
				calls++
				if calls == 1 {
					return chatstream.ChatCompletionChunk{Choices: []chatstream.ChunkChoice{{Delta: chatstream.Delta{Content: &content}}}}, nil
				}
				return chatstream.ChatCompletionChunk{}, chatstream.ErrDecode
			},
			MessageFn: func() (chatstream.ChatCompletion, error) {
				return chatstream.ChatCompletion{Choices: []chatstream.Choice{{Message: chatstream.AssistantMessage(content)}}}, nil
			},
			CloseFn: func() error {
				closed = true
				return nil
			},
		}
		p := &mock.Provider{
			ChatStreamFn: func(context.Context, chatstream.ChatArguments) (chatstream.Stream, error) {
				return stream, nil
			},
		}

		reply, err := printReply(context.Background(), p, chatstream.ChatArguments{}, &out, nil)
		assert.ErrorIs(t, err, chatstream.ErrDecode)
		assert.Equal(t, "partial", reply.String())
		assert.Equal(t, "partial\n", out.String())
		assert.True(t, closed)
	})
}

func TestReadPrompt(t *testing.T) {
	t.Parallel()

	got, err := readPrompt("from args", strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "from args", got)

	got, err = readPrompt("", strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	_, err = readPrompt("", strings.NewReader(" \n"))
	require.Error(t, err)

	_, err = readPrompt("", iotest.ErrReader(errors.New("broken pipe")))
	require.Error(t, err)
}

func TestLoadConversation(t *testing.T) {
	t.Parallel()

	t.Run("no path starts a new conversation", func(t *testing.T) {
		t.Parallel()
		conv, err := loadConversation("", settings{model: "m", system: "sys"})
		require.NoError(t, err)
		assert.NotEmpty(t, conv.ID)
		assert.Equal(t, "m", conv.Model)
		assert.Equal(t, "sys", conv.SystemPrompt)
	})

	t.Run("missing file starts a new conversation", func(t *testing.T) {
		t.Parallel()
		conv, err := loadConversation(filepath.Join(t.TempDir(), "conv.json"), settings{model: "m"})
		require.NoError(t, err)
		assert.Empty(t, conv.Messages)
	})

	t.Run("existing file is resumed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "conv.json")
		saved := chatstream.NewConversation("old-model", "old system")
		saved.Append(chatstream.UserMessage("hi"), chatstream.AssistantMessage("hello"))
		require.NoError(t, csjson.Save(path, saved))

		conv, err := loadConversation(path, settings{model: "new-model"})
		require.NoError(t, err)
		assert.Equal(t, saved.ID, conv.ID)
		assert.Equal(t, "new-model", conv.Model)
		assert.Equal(t, "old system", conv.SystemPrompt)
		assert.Len(t, conv.Messages, 2)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "conv.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := loadConversation(path, settings{})
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}

// providerOf returns a provider whose stream yields one chunk per delta and
// assembles them with an Accumulator.
func providerOf(t *testing.T, deltas ...string) *mock.Provider {
	t.Helper()
	return &mock.Provider{
		ChatStreamFn: func(context.Context, chatstream.ChatArguments) (chatstream.Stream, error) {
			var acc chatstream.Accumulator
			i := 0
			return &mock.Stream{
				NextFn: func() (chatstream.ChatCompletionChunk, error) {
					if i >= len(deltas) {
						return chatstream.ChatCompletionChunk{}, io.EOF
					}
					content := deltas[i]
					i++
					chunk := chatstream.ChatCompletionChunk{Choices: []chatstream.ChunkChoice{{Delta: chatstream.Delta{Content: &content}}}}
					acc.Add(chunk)
					return chunk, nil
				},
				MessageFn: func() (chatstream.ChatCompletion, error) {
					return acc.Completion(), nil
				},
			}, nil
		},
	}
}
