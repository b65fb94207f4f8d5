package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

// maxResponseBytes caps how much of an API response is read
const maxResponseBytes = 1 << 20

// ErrNoAPIKey is returned when no API key is configured
var ErrNoAPIKey = errors.New("anthropic api key not configured")

var categories = map[string]bool{
	"entertainment": true,
	"technology":    true,
	"memes":         true,
	"politics":      true,
	"sports":        true,
	"music":         true,
	"gaming":        true,
	"culture":       true,
	"news":          true,
	"crypto":        true,
}

var statuses = map[string]bool{
	"rising":    true,
	"viral":     true,
	"stable":    true,
	"declining": true,
}

var (
	fenceOpen  = regexp.MustCompile("^```\\w*\\n?")
	fenceClose = regexp.MustCompile("\\n?```$")
)

// GeneratorConfig contains configuration for the content generator
type GeneratorConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
}

// Generator writes news-style copy for trends through the Anthropic Messages API
type Generator struct {
	config GeneratorConfig
	client *http.Client
	policy *bluemonday.Policy
	logger zerolog.Logger
}

// NewGenerator creates a new content generator
func NewGenerator(config GeneratorConfig, logger zerolog.Logger) *Generator {
	if config.Model == "" {
		config.Model = "claude-3-haiku-20240307"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 500
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	return &Generator{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		policy: bluemonday.StrictPolicy(),
		logger: logger.With().Str("component", "content").Logger(),
	}
}

// Enabled reports whether an API key is configured
func (g *Generator) Enabled() bool {
	return g.config.APIKey != ""
}

// Generate asks the model for content and parses its JSON reply
func (g *Generator) Generate(ctx context.Context, req trend.ContentRequest) (trend.News, error) {
	if !g.Enabled() {
		return trend.News{}, ErrNoAPIKey
	}

	text, err := g.complete(ctx, buildPrompt(req))
	if err != nil {
		return trend.News{}, err
	}

	news, err := g.parse(text)
	if err != nil {
		g.logger.Debug().Str("trend", req.Name).Str("raw", truncate(text, 200)).Msg("Unparseable model reply")
		return trend.News{}, err
	}
	return news, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":      g.config.Model,
		"max_tokens": g.config.MaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode anthropic response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || result.Error.Message != "" {
		return "", fmt.Errorf("anthropic error %d: %s", resp.StatusCode, result.Error.Message)
	}

	var sb strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic returned no text")
	}
	return sb.String(), nil
}

// parse strips markdown fences, decodes the JSON object and cleans each field
func (g *Generator) parse(text string) (trend.News, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = fenceOpen.ReplaceAllString(text, "")
		text = fenceClose.ReplaceAllString(text, "")
	}

	var news trend.News
	if err := json.Unmarshal([]byte(text), &news); err != nil {
		return trend.News{}, fmt.Errorf("parse model json: %w", err)
	}

	news.Headline = g.clean(news.Headline)
	news.Summary = g.clean(news.Summary)
	news.OriginStory = g.clean(news.OriginStory)
	news.Analysis = g.clean(news.Analysis)
	news.Impact = g.clean(news.Impact)

	if news.Headline == "" && news.Summary == "" {
		return trend.News{}, errors.New("model reply has no headline or summary")
	}

	news.Category = strings.ToLower(strings.TrimSpace(news.Category))
	if !categories[news.Category] {
		news.Category = "entertainment"
	}
	news.Status = strings.ToLower(strings.TrimSpace(news.Status))
	if !statuses[news.Status] {
		news.Status = "rising"
	}
	return news, nil
}

func (g *Generator) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(g.policy.Sanitize(s)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
