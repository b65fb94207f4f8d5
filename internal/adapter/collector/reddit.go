package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

const (
	maxSubreddits       = 5
	maxPostsPerSub      = 10
	redditTitleWords    = 4
	minRedditNameLength = 6
	minRedditScore      = 1000
)

// RedditPost represents a post from Reddit
type RedditPost struct {
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Subreddit   string `json:"subreddit"`
}

// RedditResponse represents the structure of a Reddit listing
type RedditResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string     `json:"kind"`
			Data RedditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Reddit collects hot posts from the configured subreddits
type Reddit struct {
	BaseURL string

	http       *HTTPClient
	subreddits []string
	logger     zerolog.Logger
}

// NewReddit creates a Reddit collector
func NewReddit(client *HTTPClient, subreddits []string, logger zerolog.Logger) *Reddit {
	return &Reddit{
		BaseURL:    "https://www.reddit.com",
		http:       client,
		subreddits: subreddits,
		logger:     logger.With().Str("collector", "reddit").Logger(),
	}
}

// Name returns the collector name
func (c *Reddit) Name() string {
	return string(trend.PlatformReddit)
}

// Collect turns the first words of popular post titles into trends
func (c *Reddit) Collect(ctx context.Context) (*trend.Set, error) {
	set := trend.NewSet()
	var errs []error

	subreddits := c.subreddits
	if len(subreddits) > maxSubreddits {
		subreddits = subreddits[:maxSubreddits]
	}

	for _, sub := range subreddits {
		posts, err := c.GetHot(ctx, sub)
		if err != nil {
			errs = append(errs, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		c.logger.Debug().Str("subreddit", sub).Int("posts", len(posts)).Msg("Fetched hot posts")

		if len(posts) > maxPostsPerSub {
			posts = posts[:maxPostsPerSub]
		}
		for _, p := range posts {
			name := titleTrend(p.Title)
			if len(name) < minRedditNameLength || p.Score <= minRedditScore {
				continue
			}
			r := trend.NewRecord(name, trend.PlatformReddit)
			r.Metrics[trend.MetricRedditUpvotes] = float64(p.Score)
			r.Metrics[trend.MetricRedditComments] = float64(p.NumComments)
			r.Locations = []string{"global"}
			set.Add(r)
		}
	}

	return set, errors.Join(errs...)
}

// GetHot fetches the hot listing of a subreddit
func (c *Reddit) GetHot(ctx context.Context, subreddit string) ([]RedditPost, error) {
	if subreddit == "" {
		subreddit = "popular"
	}

	listing := fmt.Sprintf("%s/r/%s/hot.json?limit=25", c.BaseURL, url.PathEscape(subreddit))
	body, err := c.http.Get(ctx, listing, "application/json")
	if err != nil {
		return nil, err
	}

	var redditResp RedditResponse
	if err := json.Unmarshal(body, &redditResp); err != nil {
		return nil, fmt.Errorf("failed to decode Reddit API response: %w", err)
	}

	posts := make([]RedditPost, 0, len(redditResp.Data.Children))
	for _, child := range redditResp.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func titleTrend(title string) string {
	words := strings.Fields(title)
	if len(words) > redditTitleWords {
		words = words[:redditTitleWords]
	}
	return strings.Join(words, " ")
}
