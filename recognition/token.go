// Package recognition owns the connection to the real-time
// speech-to-text service: one-shot token acquisition and the persistent
// streaming channel audio frames are sent over.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTokenURL is the default temporary-token endpoint.
const DefaultTokenURL = "https://api.assemblyai.com/v2/realtime/token"

// tokenTTL bounds the validity window of a session token. One token is
// fetched per session start, so an hour is ample.
const tokenTTL = 3600 // seconds

// TokenClient fetches short-lived session tokens for the streaming
// endpoint.
type TokenClient struct {
	http   *http.Client
	url    string
	apiKey string
}

// NewTokenClient creates a token client authenticated with apiKey.
// url overrides the default endpoint when non-empty.
func NewTokenClient(apiKey, url string) *TokenClient {
	if url == "" {
		url = DefaultTokenURL
	}
	return &TokenClient{
		http:   &http.Client{Timeout: 15 * time.Second},
		url:    url,
		apiKey: apiKey,
	}
}

type tokenRequest struct {
	ExpiresIn int `json:"expires_in"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Fetch requests a new session token. A failure here aborts session
// start before any connection is attempted.
func (c *TokenClient) Fetch(ctx context.Context) (string, error) {
	jsonBody, err := json.Marshal(tokenRequest{ExpiresIn: tokenTTL})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint: %d - %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if tr.Token == "" {
		return "", fmt.Errorf("token endpoint: empty token")
	}
	return tr.Token, nil
}
