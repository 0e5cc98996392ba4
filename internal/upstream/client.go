// Package upstream implements the Gemini generateContent client used for
// all outbound generation calls.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client issues generation calls against the Gemini API.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// New creates a Gemini client. timeout bounds each generateContent call.
func New(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Transport: transport},
	}
}

// Gemini request types.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// Gemini response types.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
	FinishReason string `json:"finishReason,omitempty"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generateURL(model, key string) string {
	return c.baseURL + "/models/" + model + ":generateContent?key=" + key
}

// Generate sends one prompt to Gemini using the given key and classifies
// the outcome. It never returns a Go error: timeouts and transport failures
// become Failed results so the caller has a single mapping to apply.
func (c *Client) Generate(ctx context.Context, key, model, promptText string, maxTokens *int, temperature *float64) Result {
	gr := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: promptText}}},
		},
	}
	if maxTokens != nil || temperature != nil {
		gr.GenerationConfig = &geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		}
	}

	body, err := json.Marshal(gr)
	if err != nil {
		return Result{Kind: Failed, StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("marshaling request: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(model, key), bytes.NewReader(body))
	if err != nil {
		return Result{Kind: Failed, StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Kind: Failed, StatusCode: http.StatusGatewayTimeout, Message: "upstream call timed out"}
		}
		return Result{Kind: Failed, StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("sending request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return Result{
			Kind:       RateLimited,
			StatusCode: resp.StatusCode,
			Message:    "upstream quota exhausted",
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return Result{
			Kind:       Failed,
			StatusCode: resp.StatusCode,
			Message:    upstreamErrorMessage(resp),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: Failed, StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("reading response: %v", err)}
	}

	var gresp geminiResponse
	if err := json.Unmarshal(raw, &gresp); err != nil {
		return Result{Kind: Failed, StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if len(gresp.Candidates) == 0 || len(gresp.Candidates[0].Content.Parts) == 0 {
		return Result{Kind: Failed, StatusCode: http.StatusBadGateway, Message: "malformed upstream response: no candidates"}
	}

	return Result{
		Kind: Success,
		Text: gresp.Candidates[0].Content.Parts[0].Text,
		Raw:  raw,
	}
}

// upstreamErrorMessage extracts the Gemini error message, falling back to
// the raw body when the error shape is unexpected.
func upstreamErrorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var geminiErr geminiErrorBody
	if err := json.Unmarshal(body, &geminiErr); err == nil && geminiErr.Error.Message != "" {
		return geminiErr.Error.Message
	}
	return fmt.Sprintf("upstream error (status %d): %s", resp.StatusCode, string(body))
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
