// Package provider talks to an OpenAI-compatible chat-completions API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/pdfquery/internal/payload"
)

// DefaultBaseURL is the OpenAI endpoint. Point BaseURL elsewhere
// (e.g. https://openrouter.ai/api/v1) for compatible providers.
const DefaultBaseURL = "https://api.openai.com/v1"

// Vision payloads are large and slow to process.
const defaultTimeout = 240 * time.Second

// Client calls the chat-completions endpoint of an OpenAI-compatible API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ChatMessage is the assistant message inside a completion choice.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one completion alternative.
type Choice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage carries the provider token counters. Missing counters decode
// to zero, so normalization never fails on a partial response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the parsed completion response. Every field is
// optional on the wire; absent fields keep their zero values.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`

	// Raw is the unparsed response body, kept for callers that need
	// provider-specific fields.
	Raw json.RawMessage `json:"-"`
}

// CreateChatCompletion posts the request and parses the response.
// Retry policy belongs to the caller; this client makes one attempt.
func (c *Client) CreateChatCompletion(ctx context.Context, req payload.Request) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completions api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completions api status %d: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	var apiResp ChatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("provider error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	apiResp.Raw = respBody

	return &apiResp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
