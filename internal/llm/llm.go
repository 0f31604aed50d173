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

// Prompt is one request to a text model.
type Prompt struct {
	System string
	User   string
	// JSON asks the model for a bare JSON object when the backend supports it.
	JSON bool
}

// Completer sends a prompt to a text model and returns its reply text.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// OllamaClient is a minimal client for Ollama-compatible /api/generate endpoints.
type OllamaClient struct {
	url    string
	model  string
	hc     *http.Client
	logger func(format string, v ...any)
}

// NewOllamaClient creates a new client. If httpClient is nil, a default with timeout is used.
func NewOllamaClient(url, model string, httpClient *http.Client) *OllamaClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &OllamaClient{
		url:    url,
		model:  model,
		hc:     httpClient,
		logger: func(string, ...any) {},
	}
}

// SetLogger allows injecting a simple printf-like logger for debugging.
func (c *OllamaClient) SetLogger(l func(format string, v ...any)) {
	if l == nil {
		return
	}
	c.logger = l
}

// Complete sends a non-streaming request and extracts the returned text.
func (c *OllamaClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	body := map[string]any{
		"model":  c.model,
		"prompt": prompt.User,
		"stream": false,
	}
	if prompt.System != "" {
		body["system"] = prompt.System
	}
	if prompt.JSON {
		body["format"] = "json"
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("llm new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	c.logger("[llm] request url=%s model=%s err=%v latency=%s", c.url, c.model, err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	return extractText(respBody), nil
}

// extractText pulls the reply out of the common response shapes:
// {"response": ...} from Ollama, {"text": ...}, and openai-like
// {"choices":[{"text"|"message":{"content"}}]}. Anything else is returned raw.
func extractText(respBody []byte) string {
	var m map[string]any
	if err := json.Unmarshal(respBody, &m); err != nil {
		return string(bytes.TrimSpace(respBody))
	}

	if s, ok := m["response"].(string); ok && s != "" {
		return s
	}
	if s, ok := m["text"].(string); ok && s != "" {
		return s
	}
	if arr, ok := m["choices"].([]any); ok && len(arr) > 0 {
		if first, ok := arr[0].(map[string]any); ok {
			if s, ok := first["text"].(string); ok && s != "" {
				return s
			}
			if msg, ok := first["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	if arr, ok := m["results"].([]any); ok {
		buf := ""
		for _, it := range arr {
			oo, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := oo["response"].(string); ok {
				buf += s
			} else if s, ok := oo["text"].(string); ok {
				buf += s
			}
		}
		if buf != "" {
			return buf
		}
	}

	return string(bytes.TrimSpace(respBody))
}
