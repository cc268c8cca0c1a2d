package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rednote/internal/domain"
	"rednote/internal/infra"
)

func testConfig(baseURL string) infra.ProviderConfig {
	return infra.ProviderConfig{APIKey: "test-key", BaseURL: baseURL, Model: "test-model"}
}

func TestChatCompletionSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"ok":true}`}},
			},
		})
	}))
	defer srv.Close()

	content, err := NewClient(srv.Client(), nil).ChatCompletion(context.Background(), Request{
		System:      "sys",
		User:        "user",
		Temperature: 0.8,
		Config:      testConfig(srv.URL),
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content = %q", content)
	}
	if captured["temperature"] != 0.8 {
		t.Fatalf("temperature = %v", captured["temperature"])
	}
	msgs, ok := captured["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %#v", captured["messages"])
	}
}

func TestChatCompletionNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), nil).ChatCompletion(context.Background(), Request{Config: testConfig(srv.URL)})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
}

func TestChatCompletionEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  "}},
			},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), nil).ChatCompletion(context.Background(), Request{Config: testConfig(srv.URL)})
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestChatCompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), nil).ChatCompletion(context.Background(), Request{Config: testConfig(srv.URL)})
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}
