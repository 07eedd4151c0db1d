package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/morozRed/commenter/internal/element"
)

func TestParseService(t *testing.T) {
	for raw, want := range map[string]Service{
		"claude":     ServiceClaude,
		" Anthropic": ServiceClaude,
		"GPT":        ServiceGPT,
		"openai":     ServiceGPT,
		"ollama":     ServiceOllama,
	} {
		got, err := ParseService(raw)
		if err != nil || got != want {
			t.Fatalf("ParseService(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseService("bard"); err == nil {
		t.Fatalf("expected unsupported service error")
	}
}

func TestNewRequiresAPIKeyForHostedServices(t *testing.T) {
	if _, err := New(ServiceClaude, Options{}); err == nil {
		t.Fatalf("expected missing API key error for claude")
	}
	if _, err := New(ServiceGPT, Options{}); err == nil {
		t.Fatalf("expected missing API key error for gpt")
	}
	gen, err := New(ServiceOllama, Options{})
	if err != nil {
		t.Fatalf("expected ollama without key, got %v", err)
	}
	if gen.Name() != "Ollama" {
		t.Fatalf("unexpected label %q", gen.Name())
	}
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "claude-test" || req.MaxTokens != claudeDefaultMaxTokens ||
			len(req.Messages) != 1 || req.Messages[0].Role != "user" ||
			len(req.Messages[0].Content) != 1 || req.Messages[0].Content[0].Text != "hello" {
			t.Errorf("unexpected request %#v", req)
		}
		writeJSON(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",`+
			`"content":[{"type":"text","text":"Description: hi"}],"stop_reason":"end_turn",`+
			`"usage":{"input_tokens":1,"output_tokens":2}}`)
	}))
	defer srv.Close()

	gen := NewClaude(Options{APIKey: "secret", Model: "claude-test", BaseURL: srv.URL})
	text, err := gen.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "Description: hi" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("unexpected request %s %v", r.URL.Path, r.Header)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != openAIDefaultModel || len(req.Messages) != 1 || req.Messages[0].Content != "p" {
			t.Errorf("unexpected request %#v", req)
		}
		writeJSON(w, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Description: ok"}}]}`)
	}))
	defer srv.Close()

	text, err := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL + "/"}).Generate(context.Background(), "p")
	if err != nil || text != "Description: ok" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.URL.Path != "/api/generate" || req.Stream || req.Model != ollamaDefaultModel {
			t.Errorf("unexpected request %s %#v", r.URL.Path, req)
		}
		_, _ = w.Write([]byte(`{"response":"Description: local"}`))
	}))
	defer srv.Close()

	text, err := NewOllama(Options{BaseURL: srv.URL}).Generate(context.Background(), "p")
	if err != nil || text != "Description: local" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
}

func TestGenerateFailuresAreTyped(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`)
	}))
	defer srv.Close()

	for _, gen := range []Generator{
		NewClaude(Options{APIKey: "x", BaseURL: srv.URL, Retries: 3}),
		NewOpenAI(Options{APIKey: "x", BaseURL: srv.URL, Retries: 3}),
	} {
		calls.Store(0)
		_, err := gen.Generate(context.Background(), "p")
		var failure *GenerationFailure
		if !errors.As(err, &failure) {
			t.Fatalf("%s: expected GenerationFailure, got %v", gen.Name(), err)
		}
		if failure.Status != http.StatusUnauthorized || failure.Backend != gen.Name() {
			t.Fatalf("%s: unexpected failure %v", gen.Name(), failure)
		}
		if calls.Load() != 1 {
			t.Fatalf("%s: expected auth failure not to be retried, got %d calls", gen.Name(), calls.Load())
		}
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"response":"  "}`)
	}))
	defer empty.Close()
	_, err := NewOllama(Options{BaseURL: empty.URL}).Generate(context.Background(), "p")
	var failure *GenerationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected GenerationFailure for empty text, got %v", err)
	}
}

func TestClaudeEmptyContentIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"m",`+
			`"content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`)
	}))
	defer srv.Close()

	_, err := NewClaude(Options{APIKey: "x", BaseURL: srv.URL}).Generate(context.Background(), "p")
	var failure *GenerationFailure
	if !errors.As(err, &failure) || failure.Status != 0 {
		t.Fatalf("expected GenerationFailure without status, got %v", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"Description: second try"}`))
	}))
	defer srv.Close()

	gen := NewOllama(Options{BaseURL: srv.URL, Retries: 1})
	gen.backoff = time.Millisecond
	text, err := gen.Generate(context.Background(), "p")
	if err != nil || text != "Description: second try" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestBuildCommentPromptIncludesCodeAndContext(t *testing.T) {
	el := element.CodeElement{
		Name:       "add",
		Kind:       element.KindFunction,
		Parameters: []element.Param{{Name: "a", Type: "number"}, {Name: "b", Type: "number"}},
		ReturnType: "number",
	}
	ctx := ElementContext("/repo/src/math.ts", el)
	if !strings.Contains(ctx, "File: math.ts") || !strings.Contains(ctx, "Function: add") || !strings.Contains(ctx, "Parameters: a: number, b: number") {
		t.Fatalf("unexpected context:\n%s", ctx)
	}

	prompt := BuildCommentPrompt(PromptContext{Notes: "Project uses metric units."}, "function add(a, b) {}", ctx)
	for _, want := range []string{"TypeScript", "function add(a, b) {}", "Return Type: number", "Project uses metric units.", "Description:"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, prompt)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
