package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scoringServer(t *testing.T, modelText string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			var req struct {
				Contents []struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"contents"`
			}
			require.NoError(t, json.Unmarshal(body, &req))
			require.NotEmpty(t, req.Contents)
			*capture = req.Contents[0].Parts[0].Text
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": modelText}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testInput() CitationInput {
	return CitationInput{
		CitingTitle:      "Quantum Computing Advances",
		CitingSubject:    "Quantum Computing",
		CitingContent:    strings.Repeat("q", 600),
		CitedTitle:       "Data-Driven Optimization",
		CitedAuthors:     "Carol Lee, David Wong",
		CitedSubject:     "Optimization",
		CitationContext:  "builds on the framework of [3]",
		ReferenceContent: "Lee et al., 2024",
	}
}

func newTestClient(baseURL string) Client {
	return New(Config{APIKey: "test-key", BaseURL: baseURL}, zap.NewNop())
}

func TestScoreParsesPlainJSON(t *testing.T) {
	srv := scoringServer(t, `{"score": 8, "reasoning": "relevant and accurate"}`, nil)
	defer srv.Close()

	result, err := newTestClient(srv.URL).Score(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 8, result.Score)
	assert.Equal(t, "relevant and accurate", result.Reasoning)
}

func TestScoreParsesFencedJSON(t *testing.T) {
	fenced := "```json\n{\"score\": 3, \"reasoning\": \"weak match\"}\n```"
	srv := scoringServer(t, fenced, nil)
	defer srv.Close()

	result, err := newTestClient(srv.URL).Score(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)

	// Bare fences without the language tag work too.
	srv2 := scoringServer(t, "```\n{\"score\": 10, \"reasoning\": \"r\"}\n```", nil)
	defer srv2.Close()
	result, err = newTestClient(srv2.URL).Score(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
}

func TestScoreRejectsBadModelOutput(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"non-JSON", "I would rate this citation an 8 out of 10."},
		{"out of range high", `{"score": 11, "reasoning": "r"}`},
		{"out of range low", `{"score": -1, "reasoning": "r"}`},
		{"non-integer", `{"score": 7.5, "reasoning": "r"}`},
		{"string score", `{"score": "eight", "reasoning": "r"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := scoringServer(t, tc.text, nil)
			defer srv.Close()
			_, err := newTestClient(srv.URL).Score(context.Background(), testInput())
			assert.Error(t, err)
		})
	}
}

func TestScoreHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), testInput())
	assert.Error(t, err)
}

func TestScoreDisabledWithoutKey(t *testing.T) {
	client := New(Config{}, zap.NewNop())
	assert.False(t, client.Enabled())
	_, err := client.Score(context.Background(), testInput())
	assert.Error(t, err)
}

func TestPromptEmbedsArticlesAndTruncatesContent(t *testing.T) {
	var prompt string
	srv := scoringServer(t, `{"score": 5, "reasoning": "r"}`, &prompt)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), testInput())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Quantum Computing Advances")
	assert.Contains(t, prompt, "Data-Driven Optimization")
	assert.Contains(t, prompt, "Carol Lee, David Wong")
	assert.Contains(t, prompt, "builds on the framework of [3]")
	assert.Contains(t, prompt, "Rate this citation on a scale of 0-10")

	// The 600-rune content is cut to the 500-rune excerpt.
	assert.Contains(t, prompt, fmt.Sprintf("Content excerpt: %s...", strings.Repeat("q", 500)))
	assert.NotContains(t, prompt, strings.Repeat("q", 501))
}

func TestPromptDefaultsMissingContext(t *testing.T) {
	in := testInput()
	in.CitationContext = "  "
	assert.Contains(t, buildPrompt(in), "No context provided")
}
