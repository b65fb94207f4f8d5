package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendradar/internal/domain/trend"
)

func anthropicServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-haiku-20240307", body.Model)
		assert.Equal(t, 500, body.MaxTokens)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
}

func newTestGenerator(baseURL string) *Generator {
	return NewGenerator(GeneratorConfig{APIKey: "test-key", BaseURL: baseURL}, zerolog.Nop())
}

var request = trend.ContentRequest{
	Name:      "BreakingNews",
	Platforms: []trend.Platform{trend.PlatformGoogle, trend.PlatformX},
	Metrics:   trend.Metrics{trend.MetricGoogleSearches: 150000},
}

func TestGenerateParsesFencedJSON(t *testing.T) {
	reply := "```json\n" + `{"headline":"Big <b>News</b>","summary":"s","origin_story":"o","analysis":"a","impact":"i","status":"Viral","category":"Sports"}` + "\n```"
	srv := anthropicServer(t, http.StatusOK, reply)
	defer srv.Close()

	news, err := newTestGenerator(srv.URL).Generate(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "Big News", news.Headline)
	assert.Equal(t, "a", news.Analysis)
	assert.Equal(t, "viral", news.Status)
	assert.Equal(t, "sports", news.Category)
}

func TestGenerateDefaultsUnknownCategoryAndStatus(t *testing.T) {
	srv := anthropicServer(t, http.StatusOK, `{"headline":"h","summary":"s","status":"exploding","category":"weather"}`)
	defer srv.Close()

	news, err := newTestGenerator(srv.URL).Generate(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "rising", news.Status)
	assert.Equal(t, "entertainment", news.Category)
}

func TestGenerateRejectsNonJSON(t *testing.T) {
	srv := anthropicServer(t, http.StatusOK, "Sorry, I cannot help with that.")
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), request)
	assert.Error(t, err)
}

func TestGenerateReportsAPIErrors(t *testing.T) {
	srv := anthropicServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), request)
	assert.Error(t, err)
}

func TestGenerateRejectsOversizedResponse(t *testing.T) {
	reply := `{"headline":"h","summary":"` + strings.Repeat("a", maxResponseBytes) + `"}`
	srv := anthropicServer(t, http.StatusOK, reply)
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode anthropic response")
}

func TestGenerateWithoutKey(t *testing.T) {
	g := NewGenerator(GeneratorConfig{}, zerolog.Nop())

	assert.False(t, g.Enabled())
	_, err := g.Generate(context.Background(), request)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(trend.ContentRequest{
		Name:      "AI",
		Platforms: []trend.Platform{trend.PlatformGoogle, trend.PlatformReddit},
		Metrics:   trend.Metrics{trend.MetricRedditUpvotes: 2500, trend.MetricGoogleSearches: 1_200_000},
		Related:   []string{"AI", "AIArt", "AINews", "AITools"},
	})

	assert.Contains(t, prompt, "TREND: AI\n")
	assert.Contains(t, prompt, "PLATFORMS TRENDING ON: google, reddit\n")
	assert.Contains(t, prompt, "METRICS: google_searches: 1.2M, reddit_upvotes: 2.5K\n")
	assert.Contains(t, prompt, "RELATED TOPICS: AI, AIArt, AINews\n")
}

func TestBuildPromptWithoutRelated(t *testing.T) {
	assert.Contains(t, buildPrompt(trend.ContentRequest{Name: "AI"}), "RELATED TOPICS: none\n")
}
