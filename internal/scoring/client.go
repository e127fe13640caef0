// Package scoring calls a hosted Gemini model to rate citation quality.
//
// The callout is strictly best-effort: any failure (missing key, network
// error, malformed body, out-of-range score) is reported as an error and the
// caller leaves the reference unscored. There are no retries; scoring is an
// at-most-once side effect of reference creation.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client rates a single citation.
type Client interface {
	Score(ctx context.Context, in CitationInput) (*Result, error)
	Enabled() bool
}

// CitationInput carries the article and reference fields embedded in the prompt.
type CitationInput struct {
	CitingTitle   string
	CitingSubject string
	CitingContent string

	CitedTitle   string
	CitedAuthors string
	CitedSubject string

	CitationContext  string
	ReferenceContent string
}

// Result is the parsed model output.
type Result struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// Config holds the Gemini connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New creates a Gemini scoring client. An empty API key yields a disabled
// client whose Score always fails.
func New(cfg Config, log *zap.Logger) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash-exp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	cfg        Config
	log        *zap.Logger
	httpClient *http.Client
}

func (c *client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Gemini generateContent wire types, reduced to the fields we use.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *client) Score(ctx context.Context, in CitationInput) (*Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("scoring disabled: no API key configured")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(in)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring API returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	result, err := parseResult(gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	c.log.Info("Citation scored",
		zap.Int("score", result.Score),
		zap.String("reasoning", result.Reasoning))
	return result, nil
}

// parseResult extracts {score, reasoning} from the model text, tolerating the
// JSON being wrapped in a fenced code block. Out-of-range or non-integer
// scores are rejected rather than trusted.
func parseResult(text string) (*Result, error) {
	text = stripCodeFence(strings.TrimSpace(text))

	var raw struct {
		Score     json.Number `json:"score"`
		Reasoning string      `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("model returned non-JSON body: %w", err)
	}

	score, err := raw.Score.Int64()
	if err != nil {
		return nil, fmt.Errorf("model returned non-integer score %q", raw.Score.String())
	}
	if score < 0 || score > 10 {
		return nil, fmt.Errorf("model returned out-of-range score %d", score)
	}

	return &Result{Score: int(score), Reasoning: raw.Reasoning}, nil
}

// stripCodeFence removes a surrounding ``` or ```json block if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
