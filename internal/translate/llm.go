package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/mediatranslator/internal/llm"
	"github.com/nikhilbhutani/mediatranslator/internal/prompt"
)

var systemPrompt = prompt.New(
	"You are a professional translator. Translate the user's text into {{language}}. " +
		"Reply with the translation only: no notes, no quotes, no transliteration.")

// LLMTranslator translates through a chat model.
type LLMTranslator struct {
	provider llm.Provider
	model    string
}

func NewLLMTranslator(p llm.Provider, model string) *LLMTranslator {
	return &LLMTranslator{provider: p, model: model}
}

func (t *LLMTranslator) Name() string { return "llm:" + t.provider.Name() }

func (t *LLMTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	sys, err := systemPrompt.Render(map[string]string{"language": LanguageName(targetLang)})
	if err != nil {
		return "", err
	}

	out, err := t.provider.Complete(ctx, llm.Request{
		Model:       t.model,
		System:      sys,
		Prompt:      text,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("llm translate: %w", err)
	}

	slog.Debug("llm translation usage",
		"provider", t.provider.Name(),
		"model", out.Model,
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
		"cost_usd", out.CostUSD,
		"latency_ms", out.Latency.Milliseconds(),
	)
	return out.Text, nil
}
