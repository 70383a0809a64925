package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inclinedadarsh/smart-ffmpeg/internal/prompt"
)

const (
	// maxAttempts bounds the retry loop for rate-limit and network
	// failures. Other errors are terminal on the first attempt.
	maxAttempts = 3

	initialBackoff = 500 * time.Millisecond

	// maxErrorBody caps how much of an error response is echoed back
	// to the user.
	maxErrorBody = 4 << 10
)

// Config carries everything the client needs. Passed in explicitly so
// there is no hidden package-level state.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeneratedCommand is the parsed result of one completion.
type GeneratedCommand struct {
	Command     string
	Explanation string
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a completion client from the given config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
	}
}

type chatRequest struct {
	Model          string           `json:"model"`
	Messages       []prompt.Message `json:"messages"`
	ResponseFormat *responseFormat  `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// commandPayload is the JSON object the system prompt asks the model
// to emit.
type commandPayload struct {
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
}

// Generate sends the request and parses the first completion into a
// command. Retries rate-limit and network failures with exponential
// backoff, up to maxAttempts.
func (c *Client) Generate(ctx context.Context, req *prompt.Request) (*GeneratedCommand, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := c.generateOnce(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == maxAttempts {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, &NetworkError{Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}

func isRetryable(err error) bool {
	switch err.(type) {
	case *RateLimitError, *NetworkError:
		return true
	}
	return false
}

func (c *Client) generateOnce(ctx context.Context, req *prompt.Request) (*GeneratedCommand, error) {
	body := chatRequest{
		Model:          c.model,
		Messages:       req.Messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &UpstreamError{Body: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &UpstreamError{Body: "no choices in response"}
	}

	content := stripFences(strings.TrimSpace(parsed.Choices[0].Message.Content))
	if content == "" {
		return nil, &UpstreamError{Body: "empty completion"}
	}

	return parseCommand(content)
}

// parseCommand extracts the command from the model output. The system
// prompt asks for a JSON object, but models occasionally ignore that,
// so plain text falls back to treating the output as the command
// itself. Multi-line commands are trimmed to the first non-empty line.
func parseCommand(content string) (*GeneratedCommand, error) {
	var payload commandPayload
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		command := firstLine(payload.Command)
		if command == "" {
			return nil, &UpstreamError{Body: "response contained no command"}
		}
		return &GeneratedCommand{
			Command:     command,
			Explanation: strings.TrimSpace(payload.Explanation),
		}, nil
	}

	command := firstLine(content)
	if command == "" {
		return nil, &UpstreamError{Body: "response contained no command"}
	}
	return &GeneratedCommand{Command: command}, nil
}

// stripFences removes a markdown code fence the model may have added
// despite instructions. The opening fence line is dropped whole, so
// any language tag (json, bash, sh) goes with it.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
