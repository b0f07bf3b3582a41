package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator abstracts a text generation backend (Gemini, any OpenAI-compatible
// API, or a local Ollama server). The reply pipeline depends only on this
// interface so the fallback path can be exercised without a network.
type Generator interface {
	// Generate sends a single prompt and returns the model's text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name used for generation.
	Model() string
}

// Checker is implemented by generators that can verify their backend is
// reachable before the first request.
type Checker interface {
	Check(ctx context.Context) error
}

var (
	// ErrNotConfigured is returned when a provider lacks a usable credential.
	ErrNotConfigured = errors.New("model provider not configured")

	// ErrEmptyResponse is returned when the backend answered without text.
	ErrEmptyResponse = errors.New("model returned no text")
)

// APIError is a non-2xx response from a model backend.
type APIError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s API error %d (%s): %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// placeholderKeys are sample values shipped in example configs.
var placeholderKeys = []string{"YOUR_GEMINI_API_KEY_HERE", "YOUR_API_KEY_HERE", "YOUR_OPENAI_API_KEY_HERE"}

// HasUsableKey reports whether key is set and is not a sample placeholder.
func HasUsableKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, p := range placeholderKeys {
		if strings.EqualFold(key, p) {
			return false
		}
	}
	return true
}

// New returns the Generator for cfg.Provider. Providers that need an API key
// return ErrNotConfigured when none is usable.
func New(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		if !HasUsableKey(cfg.APIKey) {
			return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
		}
		return NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderOpenAI:
		if !HasUsableKey(cfg.APIKey) {
			return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
