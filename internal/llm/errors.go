package llm

import "fmt"

// AuthenticationError is returned on HTTP 401/403 from the API.
type AuthenticationError struct {
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): check your OPENROUTER_API_KEY", e.StatusCode)
}

// RateLimitError is returned on HTTP 429 from the API.
type RateLimitError struct {
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by the API (HTTP %d)", e.StatusCode)
}

// UpstreamError covers other non-2xx responses and malformed or empty
// response bodies.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("unexpected API response (HTTP %d): %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("unexpected API response (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("malformed API response: %s", e.Body)
}

// NetworkError wraps connection failures and timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling the API: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
