// Package yaml loads the chatstream CLI configuration from a YAML file.
//
// Configuration is layered: built-in defaults, then the first config file
// found, then environment overrides. Command-line flags are applied on top by
// the caller.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Providers understood by the CLI.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Environment variables consulted by Load.
const (
	EnvConfig  = "CHATSTREAM_CONFIG"
	EnvProfile = "CHATSTREAM_PROFILE"
)

// Config is the full CLI configuration.
type Config struct {
	DefaultProfile string             `yaml:"default_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is a named set of connection and sampling settings.
type Profile struct {
	Provider     string   `yaml:"provider"`
	BaseURL      string   `yaml:"base_url"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	Model        string   `yaml:"model"`
	SystemPrompt string   `yaml:"system_prompt"`
	Temperature  *float64 `yaml:"temperature"`
	MaxTokens    *int     `yaml:"max_tokens"`
}

// Defaults returns the built-in configuration: an "openai" profile (the
// default) and a "gemini" profile.
func Defaults() Config {
	return Config{
		DefaultProfile: ProviderOpenAI,
		Profiles: map[string]Profile{
			ProviderOpenAI: {
				Provider:  ProviderOpenAI,
				BaseURL:   "https://api.openai.com",
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o-mini",
			},
			ProviderGemini: {
				Provider:  ProviderGemini,
				APIKeyEnv: "GEMINI_API_KEY",
				Model:     "gemini-2.5-flash",
			},
		},
	}
}

// Load builds the configuration from its layered sources:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CHATSTREAM_CONFIG, then
//     $XDG_CONFIG_HOME/chatstream/config.yaml or ~/.config/chatstream/config.yaml)
//  3. CHATSTREAM_PROFILE overriding the default profile
//  4. Validation
//
// A missing file is an error only when it was named explicitly. getenv is
// usually os.Getenv.
func Load(explicit string, getenv func(string) string) (Config, error) {
	cfg := Defaults()

	path, required := discoverConfigFile(explicit, getenv)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := merge(&cfg, data); err != nil {
				return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if v := getenv(EnvProfile); v != "" {
		cfg.DefaultProfile = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// discoverConfigFile returns the config path and whether it must exist.
func discoverConfigFile(explicit string, getenv func(string) string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if p := getenv(EnvConfig); p != "" {
		return p, true
	}
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "chatstream", "config.yaml"), false
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "chatstream", "config.yaml"), false
	}
	return "", false
}

// Parse decodes a config file on top of the defaults, without environment
// overrides.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := merge(&cfg, data); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// merge overlays the file's settings onto cfg. Profiles merge field by field
// with a built-in profile of the same name; unknown keys are rejected.
func merge(cfg *Config, data []byte) error {
	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if file.DefaultProfile != "" {
		cfg.DefaultProfile = file.DefaultProfile
	}
	for name, p := range file.Profiles {
		cfg.Profiles[name] = overlay(cfg.Profiles[name], p)
	}
	return nil
}

func overlay(base, p Profile) Profile {
	if p.Provider != "" {
		base.Provider = p.Provider
	}
	if p.BaseURL != "" {
		base.BaseURL = p.BaseURL
	}
	if p.APIKeyEnv != "" {
		base.APIKeyEnv = p.APIKeyEnv
	}
	if p.Model != "" {
		base.Model = p.Model
	}
	if p.SystemPrompt != "" {
		base.SystemPrompt = p.SystemPrompt
	}
	if p.Temperature != nil {
		base.Temperature = p.Temperature
	}
	if p.MaxTokens != nil {
		base.MaxTokens = p.MaxTokens
	}
	return base
}

// Profile returns the named profile, or the default profile when name is
// empty.
func (c Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

// Validate checks that the default profile exists and that every profile
// names a known provider and sane sampling settings.
func (c Config) Validate() error {
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		return fmt.Errorf("default profile %q is not defined", c.DefaultProfile)
	}
	for name, p := range c.Profiles {
		switch p.Provider {
		case ProviderOpenAI, ProviderGemini:
		default:
			return fmt.Errorf("profile %q: unknown provider %q", name, p.Provider)
		}
		if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
			return fmt.Errorf("profile %q: temperature must be in [0, 2]", name)
		}
		if p.MaxTokens != nil && *p.MaxTokens < 0 {
			return fmt.Errorf("profile %q: max_tokens must be non-negative", name)
		}
	}
	return nil
}
