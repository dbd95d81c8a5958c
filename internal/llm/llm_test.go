package llm

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nikhilbhutani/mediatranslator/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		provider string
		wantName string
		wantErr  bool
	}{
		{name: "openai with key", cfg: config.LLMConfig{OpenAIKey: "sk"}, provider: "openai", wantName: "openai"},
		{name: "openai-compatible without key", cfg: config.LLMConfig{OpenAIBaseURL: "http://vllm:8000/v1"}, provider: "openai", wantName: "openai"},
		{name: "openai unconfigured", provider: "openai", wantErr: true},
		{name: "anthropic", cfg: config.LLMConfig{AnthropicKey: "ak"}, provider: "anthropic", wantName: "anthropic"},
		{name: "anthropic unconfigured", provider: "anthropic", wantErr: true},
		{name: "ollama", cfg: config.LLMConfig{OllamaURL: "http://localhost:11434"}, provider: "ollama", wantName: "ollama"},
		{name: "ollama unconfigured", provider: "ollama", wantErr: true},
		{name: "unknown", cfg: config.LLMConfig{OpenAIKey: "sk"}, provider: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg, tt.provider)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() should have failed")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ollamaChatReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("messages = %+v", req.Messages)
		}
		io.WriteString(w, `{"message":{"role":"assistant","content":"bonjour"},"done":true,"prompt_eval_count":3,"eval_count":2}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL + "/")
	out, err := p.Complete(context.Background(), Request{Model: "llama3", System: "translate", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out.Text != "bonjour" || out.InputTokens != 3 || out.OutputTokens != 2 {
		t.Errorf("completion = %+v", out)
	}
}

func TestOllamaCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewOllamaProvider(srv.URL).Complete(context.Background(), Request{Model: "x", Prompt: "hi"}); err == nil {
		t.Fatal("Complete() should fail on a non-200 response")
	}
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("messages = %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hola"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1000, "completion_tokens": 1000, "total_tokens": 2000}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1/")
	out, err := p.Complete(context.Background(), Request{Model: "gpt-4o-mini", System: "translate", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out.Text != "hola" {
		t.Errorf("Text = %q, want hola", out.Text)
	}
	if want := 0.00075; math.Abs(out.CostUSD-want) > 1e-9 {
		t.Errorf("CostUSD = %v, want %v", out.CostUSD, want)
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-2","model":"gpt-4o-mini","choices":[]}`)
	}))
	defer srv.Close()

	if _, err := NewOpenAIProvider("sk-test", srv.URL+"/v1").Complete(context.Background(), Request{Model: "gpt-4o-mini", Prompt: "hi"}); err == nil {
		t.Fatal("Complete() should fail when no choices come back")
	}
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.System) != 1 || req.System[0].Text != "translate" {
			t.Errorf("system = %+v", req.System)
		}
		if req.MaxTokens != anthropicMaxTokens {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-haiku-20240307",
			"content": [{"type": "text", "text": "ciao"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("ak-test", srv.URL)
	out, err := p.Complete(context.Background(), Request{Model: "claude-3-haiku-20240307", System: "translate", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out.Text != "ciao" || out.InputTokens != 10 || out.OutputTokens != 4 {
		t.Errorf("completion = %+v", out)
	}
}

func TestCalculateCostUnknownModel(t *testing.T) {
	if got := CalculateCost("mystery", 1000, 1000); got != 0 {
		t.Errorf("CalculateCost() = %v, want 0", got)
	}
}
