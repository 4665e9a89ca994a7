// Command chatstream streams chat completions from an OpenAI-compatible
// endpoint or Gemini.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... chatstream [flags] [prompt]
//	echo prompt | chatstream [flags]
//	chatstream -tui [flags]
//
// Flags:
//
//	-provider string      Provider: openai, gemini (default from profile)
//	-model string         Model ID (default from profile)
//	-base-url string      API base URL for OpenAI-compatible servers
//	-api-key string       API key (overrides the profile's env var)
//	-config string        Path to config file
//	-profile string       Config profile name
//	-system string        System prompt
//	-temperature float    Sampling temperature in [0, 2]
//	-max-tokens int       Maximum tokens to generate
//	-attach glob          Files to attach to the prompt (repeatable)
//	-conversation string  Conversation file to resume and save
//	-tui                  Start the interactive chat UI
//	-markdown             Render the reply as markdown once complete
//	-debug                Log debug output to stderr
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/chatstream"
	bt "github.com/fwojciec/chatstream/bubbletea"
	csfs "github.com/fwojciec/chatstream/fs"
	csjson "github.com/fwojciec/chatstream/json"
	"github.com/fwojciec/chatstream/yaml"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatstream: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(os.Stderr, opts.debug)

	cfg, err := yaml.Load(opts.configPath, os.Getenv)
	if err != nil {
		return err
	}
	s, err := resolveSettings(cfg, opts, os.Getenv)
	if err != nil {
		return err
	}
	logger.Debug("resolved settings", "provider", s.provider, "model", s.model, "base_url", s.baseURL)

	provider, err := newProvider(ctx, s, logger)
	if err != nil {
		return err
	}

	conv, err := loadConversation(opts.conversation, s)
	if err != nil {
		return err
	}

	attached, err := attachments(opts.attach)
	if err != nil {
		return err
	}

	interactive := opts.tui || (opts.prompt == "" && term.IsTerminal(int(os.Stdin.Fd())))
	if interactive {
		if attached != "" {
			conv.SystemPrompt = strings.TrimSpace(conv.SystemPrompt + "\n\n" + attached)
		}
		chat := func(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error) {
			args.Temperature = s.temperature
			args.MaxTokens = s.maxTokens
			return provider.ChatStream(ctx, args)
		}
		m := bt.New(chat, &conv, s.model, chatstream.DefaultTheme())
		if err := bt.Run(ctx, m); err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
	} else {
		prompt, err := readPrompt(opts.prompt, os.Stdin)
		if err != nil {
			return err
		}
		if attached != "" {
			prompt += "\n\n" + attached
		}
		conv.Append(chatstream.UserMessage(prompt))
		var render renderFunc
		if opts.markdown {
			render = markdownRenderer(os.Stdout)
		}
		reply, err := printReply(ctx, provider, s.arguments(conv), os.Stdout, render)
		if content := reply.String(); content != "" {
			conv.Append(chatstream.AssistantMessage(content))
		}
		logger.Debug("reply finished",
			"finish_reason", finishReason(reply),
			"prompt_tokens", reply.Usage.PromptTokens,
			"completion_tokens", reply.Usage.CompletionTokens)
		if err != nil {
			return err
		}
	}

	if opts.conversation != "" {
		if err := csjson.Save(opts.conversation, conv); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}
	}
	return nil
}

// newLogger returns a text logger on w at debug level, or a discarding
// logger when debug is off.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadConversation resumes the conversation at path, or starts a new one
// when path is empty or does not exist yet. The system prompt of a resumed
// conversation is replaced only when one was configured.
func loadConversation(path string, s settings) (chatstream.Conversation, error) {
	if path != "" {
		conv, err := csjson.Load(path)
		switch {
		case err == nil:
			if s.system != "" {
				conv.SystemPrompt = s.system
			}
			if s.model != "" {
				conv.Model = s.model
			}
			return conv, nil
		case errors.Is(err, fs.ErrNotExist):
		default:
			return chatstream.Conversation{}, fmt.Errorf("load conversation: %w", err)
		}
	}
	return chatstream.NewConversation(s.model, s.system), nil
}

// attachments reads the files matched by patterns from the working
// directory and formats them for a prompt.
func attachments(patterns []string) (string, error) {
	if len(patterns) == 0 {
		return "", nil
	}
	atts, err := csfs.Attach(".", patterns, csfs.DefaultMaxBytes)
	if err != nil {
		return "", fmt.Errorf("attach: %w", err)
	}
	return csfs.FormatAttachments(atts), nil
}

// readPrompt returns the prompt from the command line, or reads it from r
// when none was given.
func readPrompt(fromArgs string, r io.Reader) (string, error) {
	if fromArgs != "" {
		return fromArgs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("empty prompt: pass it as arguments, on stdin, or use -tui")
	}
	return prompt, nil
}

func finishReason(c chatstream.ChatCompletion) string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].FinishReason
}
