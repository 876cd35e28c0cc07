package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/mdstream"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the mdstream configuration file contents.
type Config struct {
	// Components are custom tags rendered as component nodes.
	Components []string `yaml:"components,omitempty"`
	// Placeholders override the placeholder component per token kind,
	// e.g. link: my-link-skeleton.
	Placeholders      map[string]string `yaml:"placeholders,omitempty"`
	WrapperTag        string            `yaml:"wrapper_tag,omitempty"`
	OpenLinksInNewTab bool              `yaml:"open_links_in_new_tab,omitempty"`
	Sanitizer         SanitizerConfig   `yaml:"sanitizer,omitempty"`
	Animation         AnimationConfig   `yaml:"animation,omitempty"`

	ChunkSize int           `yaml:"chunk_size,omitempty"`
	Delay     time.Duration `yaml:"delay,omitempty"`
	Width     int           `yaml:"width,omitempty"`
	Format    string        `yaml:"format,omitempty"`
	LogLevel  string        `yaml:"log_level,omitempty"`

	Provider        string `yaml:"provider,omitempty"`
	Model           string `yaml:"model,omitempty"`
	SystemPrompt    string `yaml:"system_prompt,omitempty"`
	MaxTokens       int    `yaml:"max_tokens,omitempty"`
	AnthropicAPIKey string `yaml:"anthropic_api_key,omitempty"`
	GeminiAPIKey    string `yaml:"gemini_api_key,omitempty"`
}

// SanitizerConfig mirrors [mdstream.SanitizerConfig].
type SanitizerConfig struct {
	AllowedTags      []string `yaml:"allowed_tags,omitempty"`
	AllowedAttrs     []string `yaml:"allowed_attrs,omitempty"`
	URLSchemes       []string `yaml:"url_schemes,omitempty"`
	AllowComments    bool     `yaml:"allow_comments,omitempty"`
	StripContentTags []string `yaml:"strip_content_tags,omitempty"`
}

// AnimationConfig mirrors [mdstream.Animation].
type AnimationConfig struct {
	Enabled      bool          `yaml:"enabled,omitempty"`
	FadeDuration time.Duration `yaml:"fade_duration,omitempty"`
	Easing       string        `yaml:"easing,omitempty"`
}

var formats = map[string]bool{"html": true, "json": true, "text": true, "markdown": true}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return errors.New("chunk_size must not be negative")
	}
	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if c.Width < 0 {
		return errors.New("width must not be negative")
	}
	if c.MaxTokens < 0 {
		return errors.New("max_tokens must not be negative")
	}
	if c.Format != "" && !formats[c.Format] {
		return fmt.Errorf("unknown format %q: must be html, json, text or markdown", c.Format)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	switch c.Provider {
	case "", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown provider %q: must be \"anthropic\" or \"gemini\"", c.Provider)
	}
	for _, name := range c.Components {
		if strings.TrimSpace(name) == "" {
			return errors.New("components must not contain empty names")
		}
	}
	for kind, name := range c.Placeholders {
		if _, ok := mdstream.ParseTokenKind(kind); !ok {
			return fmt.Errorf("placeholders: unknown token kind %q", kind)
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("placeholders: empty component name for %q", kind)
		}
	}
	if c.Animation.FadeDuration < 0 {
		return errors.New("animation.fade_duration must not be negative")
	}
	return nil
}

// LoadFromEnv overrides API keys from the environment. Variables override
// existing values only if set and non-empty.
func (c *Config) LoadFromEnv(getenv func(string) string) {
	if key := getenv("ANTHROPIC_API_KEY"); key != "" {
		c.AnthropicAPIKey = key
	}
	if key := getenv("GEMINI_API_KEY"); key != "" {
		c.GeminiAPIKey = key
	}
}

// ComponentRegistry registers every configured tag, plus every placeholder
// target, as a stock element component.
func (c *Config) ComponentRegistry() mdstream.Components {
	components := make(mdstream.Components)
	for _, name := range c.Components {
		name = strings.ToLower(strings.TrimSpace(name))
		components[name] = mdstream.Element(name)
	}
	for _, name := range c.Placeholders {
		name = strings.ToLower(strings.TrimSpace(name))
		components[name] = mdstream.Element(name)
	}
	return components
}

// PlaceholderOverrides converts the placeholders map to token kinds. It
// assumes Validate has passed.
func (c *Config) PlaceholderOverrides() map[mdstream.TokenKind]string {
	if len(c.Placeholders) == 0 {
		return nil
	}
	out := make(map[mdstream.TokenKind]string, len(c.Placeholders))
	for kind, name := range c.Placeholders {
		k, _ := mdstream.ParseTokenKind(kind)
		out[k] = name
	}
	return out
}

// SanitizerConfig returns the configured sanitizer allow-list.
func (c *Config) SanitizerConfig() mdstream.SanitizerConfig {
	return mdstream.SanitizerConfig{
		AllowedTags:      c.Sanitizer.AllowedTags,
		AllowedAttrs:     c.Sanitizer.AllowedAttrs,
		URLSchemes:       c.Sanitizer.URLSchemes,
		AllowComments:    c.Sanitizer.AllowComments,
		StripContentTags: c.Sanitizer.StripContentTags,
	}
}

// AnimationSettings returns the configured animation, filling unset
// duration and easing from [mdstream.DefaultAnimation].
func (c *Config) AnimationSettings() mdstream.Animation {
	def := mdstream.DefaultAnimation()
	a := mdstream.Animation{
		Enabled:      c.Animation.Enabled,
		FadeDuration: c.Animation.FadeDuration,
		Easing:       c.Animation.Easing,
	}
	if a.FadeDuration == 0 {
		a.FadeDuration = def.FadeDuration
	}
	if a.Easing == "" {
		a.Easing = def.Easing
	}
	return a
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdstream", "config.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mdstream", "config.yml")
	}
	return filepath.Join(home, ".config", "mdstream", "config.yml")
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// resolveConfig loads the config named by the --config flag, then
// MDSTREAM_CONFIG, then the default path, and applies environment
// overrides. Only a missing default file is tolerated.
func resolveConfig(flagPath string, getenv func(string) string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = getenv("MDSTREAM_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath(getenv)
	}

	cfg, err := Load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, os.ErrNotExist):
		cfg = &Config{}
	default:
		return nil, err
	}
	cfg.LoadFromEnv(getenv)
	return cfg, nil
}
