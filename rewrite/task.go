package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTaskURL is the default rewrite-task endpoint.
const DefaultTaskURL = "https://api.assemblyai.com/lemur/v3/generate/task"

// taskBackend implements Backend against the native rewrite-task API.
type taskBackend struct {
	http   *http.Client
	url    string
	apiKey string
	model  string
}

func newTaskBackend(apiKey, model, baseURL string) *taskBackend {
	if baseURL == "" {
		baseURL = DefaultTaskURL
	}
	return &taskBackend{
		http:   &http.Client{Timeout: 60 * time.Second},
		url:    baseURL,
		apiKey: apiKey,
		model:  model,
	}
}

type taskRequest struct {
	FinalModel  string  `json:"final_model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	InputText   string  `json:"input_text"`
}

type taskResponse struct {
	Response string `json:"response"`
}

// Rewrite issues one task request with deterministic generation
// settings. A response without the response field is a failure.
func (b *taskBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	jsonBody, err := json.Marshal(taskRequest{
		FinalModel:  b.model,
		Prompt:      prompt,
		Temperature: 0,
		InputText:   text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("task endpoint: %d - %s", resp.StatusCode, string(body))
	}

	var tr taskResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if tr.Response == "" {
		return "", fmt.Errorf("task endpoint: missing response field")
	}
	return tr.Response, nil
}
