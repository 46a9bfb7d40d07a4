package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var gotReferrer string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferrer = r.Header.Get("HTTP-Referer")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"resposta"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL+"/v1", "test-model", "https://example.org", "")
	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "prompt"},
		{Role: RoleUser, Content: "olá"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "resposta" || resp.TotalTokens != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if gotReferrer != "https://example.org" {
		t.Fatalf("referrer header not injected: %q", gotReferrer)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL+"/v1", "m", "", "")
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err != ErrEmptyResponse {
		t.Fatalf("want ErrEmptyResponse, got %v", err)
	}
}
