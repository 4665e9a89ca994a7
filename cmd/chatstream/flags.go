package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// options holds the parsed command line.
type options struct {
	provider     string
	model        string
	baseURL      string
	apiKey       string
	configPath   string
	profile      string
	system       string
	temperature  *float64
	maxTokens    *int
	attach       []string
	conversation string
	tui          bool
	markdown     bool
	debug        bool
	prompt       string
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parseFlags parses args (without the program name). Remaining arguments
// are joined into the prompt.
func parseFlags(args []string, output io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("chatstream", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&o.provider, "provider", "", "Provider: openai, gemini (default from profile)")
	fs.StringVar(&o.model, "model", "", "Model ID (default from profile)")
	fs.StringVar(&o.baseURL, "base-url", "", "API base URL for OpenAI-compatible servers")
	fs.StringVar(&o.apiKey, "api-key", "", "API key (overrides the profile's env var)")
	fs.StringVar(&o.configPath, "config", "", "Path to config file")
	fs.StringVar(&o.profile, "profile", "", "Config profile name")
	fs.StringVar(&o.system, "system", "", "System prompt")
	fs.Func("temperature", "Sampling temperature in [0, 2]", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		o.temperature = &f
		return nil
	})
	fs.Func("max-tokens", "Maximum tokens to generate", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		o.maxTokens = &n
		return nil
	})
	var attach stringList
	fs.Var(&attach, "attach", "Glob of files to attach to the prompt (repeatable)")
	fs.StringVar(&o.conversation, "conversation", "", "Conversation file to resume and save")
	fs.BoolVar(&o.tui, "tui", false, "Start the interactive chat UI")
	fs.BoolVar(&o.markdown, "markdown", false, "Render the reply as markdown once complete")
	fs.BoolVar(&o.debug, "debug", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.attach = attach
	o.prompt = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if o.tui && o.markdown {
		return options{}, fmt.Errorf("-markdown applies to one-shot mode only")
	}
	return o, nil
}
