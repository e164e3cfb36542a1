package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Compile-time interface check.
var _ Model = (*Gemini)(nil)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Gemini implements Model against the Google Generative Language REST API.
type Gemini struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// Option configures a Gemini client.
type Option func(*Gemini)

// WithModel overrides the model name (default gemini-1.5-flash).
func WithModel(name string) Option {
	return func(g *Gemini) {
		g.model = name
	}
}

// WithBaseURL overrides the API base URL. Used by tests to point at a local
// httptest server.
func WithBaseURL(url string) Option {
	return func(g *Gemini) {
		g.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) {
		g.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gemini) {
		g.http = hc
	}
}

// NewGemini creates a Gemini client for the given API key.
func NewGemini(apiKey string, opts ...Option) *Gemini {
	g := &Gemini{
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// generateRequest is the generateContent request envelope.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the subset of the generateContent response we consume.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// apiError is the Google RPC error envelope returned on non-2xx statuses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// Complete sends the prompt to the generateContent endpoint and returns the
// concatenated text of the first candidate.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &Error{Kind: KindMalformed, Message: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindMalformed, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTimeout, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &Error{Kind: KindMalformed, Message: "decode response", Err: err}
	}
	if len(out.Candidates) == 0 {
		return "", &Error{Kind: KindMalformed, Message: "response contains no candidates"}
	}

	var parts []string
	for _, p := range out.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if text == "" {
		return "", &Error{Kind: KindMalformed, Message: "candidate contains no text"}
	}
	return text, nil
}

// classifyTransport maps a round-trip error. Deadlines and network timeouts
// are KindTimeout; other transport failures are treated the same way since
// both classes are transient from the caller's point of view.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: "model call timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "model call timed out", Err: err}
	}
	return &Error{Kind: KindTimeout, Message: "model endpoint unreachable", Err: err}
}

// classifyStatus maps a non-2xx status into the error taxonomy:
//   - 429 RESOURCE_EXHAUSTED is quota exhaustion, carrying the provider's
//     RetryInfo delay when present; any other 429 is rate limiting
//   - 401/403 are account-level rejection, reported as quota failures
//   - 5xx is transient and reported as a timeout-class failure
//   - anything else means the request was rejected as invalid
func classifyStatus(status int, body []byte) *Error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusTooManyRequests:
		retryAfter := parseRetryDelay(ae)
		if ae.Error.Status == "RESOURCE_EXHAUSTED" {
			return &Error{Kind: KindQuotaExceeded, RetryAfter: retryAfter, Status: status, Message: msg}
		}
		return &Error{Kind: KindRateLimited, RetryAfter: retryAfter, Status: status, Message: msg}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindQuotaExceeded, Status: status, Message: msg}
	case status >= 500:
		return &Error{Kind: KindTimeout, Status: status, Message: msg}
	default:
		return &Error{Kind: KindMalformed, Status: status, Message: msg}
	}
}

// parseRetryDelay extracts the RetryInfo delay ("18s") from error details.
func parseRetryDelay(ae apiError) time.Duration {
	for _, d := range ae.Error.Details {
		if !strings.HasSuffix(d.Type, "RetryInfo") || d.RetryDelay == "" {
			continue
		}
		if delay, err := time.ParseDuration(d.RetryDelay); err == nil {
			return delay
		}
	}
	return 0
}
