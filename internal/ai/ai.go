// Package ai adapts chat completion providers behind a single interface.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/school-assistant-api/pkg/config"
)

// DefaultTimeout bounds a single Generate call when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// DefaultOpenAIModel is used when no OpenAI model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// ErrNotConfigured is returned when the selected provider has no API key.
var ErrNotConfigured = errors.New("ai provider not configured")

// Provider generates a reply for a system prompt and a user message.
type Provider interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Info() Info
}

// Info identifies a provider and model for display.
type Info struct {
	Provider string
	Model    string
}

// Config selects and tunes a provider.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// ConfigFrom picks the settings of the configured provider.
func ConfigFrom(cfg config.AIConfig) Config {
	out := Config{Provider: strings.ToLower(cfg.Provider), Timeout: cfg.Timeout}
	switch out.Provider {
	case config.AIProviderGemini:
		out.APIKey = cfg.Gemini.APIKey
		out.Model = cfg.Gemini.Model
		out.MaxTokens = cfg.Gemini.MaxTokens
		out.Temperature = cfg.Gemini.Temperature
	default:
		out.APIKey = cfg.OpenAI.APIKey
		out.BaseURL = cfg.OpenAI.BaseURL
		out.Model = cfg.OpenAI.Model
		out.MaxTokens = cfg.OpenAI.MaxTokens
		out.Temperature = cfg.OpenAI.Temperature
	}
	return out
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNotConfigured)
	}
	switch cfg.Provider {
	case config.AIProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case config.AIProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
