// Package llm implements the LLM Orchestrator: Single/Batched/Swarm
// script-generation strategies over an OpenAI-chat-compatible
// OpenRouter client, drawing keys from the API-Key Pool per the
// precedence in resolveKey.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatMessage is one entry in an OpenRouter chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the wire shape OpenRouter's chat/completions endpoint
// expects; this is the only contract the orchestrator relies on.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// CallError carries the HTTP status so callers can distinguish
// rate-limit (429) and invalid-key (401) outcomes for pool bookkeeping.
type CallError struct {
	StatusCode int
	Body       string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("openrouter call failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal hand-rolled OpenRouter transport: no SDK exists
// for this provider in the grounding corpus, so this mirrors the
// teacher's own hand-rolled provider clients (typed request/response
// structs, no generated code).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// providerTimeout is the orchestrator-side HTTP client timeout; the
// spec leaves this unspecified at the orchestrator level but recommends
// 60s at the transport.
const providerTimeout = 60 * time.Second

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: providerTimeout},
		baseURL:    "https://openrouter.ai/api/v1/chat/completions",
	}
}

// Complete issues a single chat completion call using the given key.
// A single call is never retried automatically within this method —
// retry (via a different key) is the caller's responsibility, per the
// orchestrator's precedence rule.
func (c *Client) Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &CallError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter response had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
