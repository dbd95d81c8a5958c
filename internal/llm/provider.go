// Package llm runs single-turn completions against a hosted or local chat
// model. One provider is selected per process.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilbhutani/mediatranslator/internal/config"
)

// Provider completes one instruction/input pair.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	Name() string
}

// Request is a system instruction plus a single user turn.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completion is the model's reply with usage accounting.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Latency      time.Duration
}

// New builds the provider called name from cfg.
func New(cfg config.LLMConfig, name string) (Provider, error) {
	switch name {
	case "openai":
		if cfg.OpenAIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai: no API key or base URL configured")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic: no API key configured")
		}
		return NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicBaseURL), nil
	case "ollama":
		if cfg.OllamaURL == "" {
			return nil, fmt.Errorf("ollama: no URL configured")
		}
		return NewOllamaProvider(cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
