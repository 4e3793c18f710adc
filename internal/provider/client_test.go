package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/pdfquery/internal/payload"
)

func testRequest() payload.Request {
	return payload.Request{
		Model: "gpt-4o",
		Messages: []payload.Message{
			{Role: payload.RoleSystem, Content: "prompt"},
			{Role: payload.RoleUser, Content: []payload.ContentPart{payload.TextPart("q")}},
		},
		MaxTokens:   1024,
		Temperature: 0,
	}
}

func TestCreateChatCompletion_ParsesResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "gpt-4o-2024-08-06",
			"choices": [{"message": {"role": "assistant", "content": "An answer [p.1]"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test")
	resp, err := client.CreateChatCompletion(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("expected /chat/completions, got %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("wrong auth header: %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o" {
		t.Errorf("request model not sent: %v", gotBody["model"])
	}

	if resp.Model != "gpt-4o-2024-08-06" {
		t.Errorf("wrong model: %q", resp.Model)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "An answer [p.1]" {
		t.Errorf("choices not parsed: %+v", resp.Choices)
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Errorf("wrong finish reason: %q", resp.Choices[0].FinishReason)
	}
	if resp.Usage.TotalTokens != 120 {
		t.Errorf("wrong usage: %+v", resp.Usage)
	}
	if len(resp.Raw) == 0 {
		t.Error("raw body should be retained")
	}
}

func TestCreateChatCompletion_MissingUsageDefaultsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "m", "choices": [{"message": {"content": "x"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	resp, err := client.CreateChatCompletion(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.PromptTokens != 0 || resp.Usage.TotalTokens != 0 {
		t.Errorf("absent usage should be zero: %+v", resp.Usage)
	}
	if resp.Choices[0].FinishReason != "" {
		t.Errorf("absent finish reason should be empty: %q", resp.Choices[0].FinishReason)
	}
}

func TestCreateChatCompletion_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit", "message": "slow down"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.CreateChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestCreateChatCompletion_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "model not found"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.CreateChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for error body")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry the provider message, got %v", err)
	}
}

func TestCreateChatCompletion_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	if _, err := client.CreateChatCompletion(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("", "k")
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", client.baseURL)
	}
}
