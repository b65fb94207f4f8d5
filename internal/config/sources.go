package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources lists what each collector looks at. Defaults are overlaid by an optional YAML file;
// a list present in the file replaces the default list entirely.
type Sources struct {
	GoogleGeos    []string `yaml:"google_geos"`
	SeedTopics    []string `yaml:"seed_topics"`
	Subreddits    []string `yaml:"subreddits"`
	XQuery        string   `yaml:"x_query"`
	XTrendsPage   string   `yaml:"x_trends_page"`
	TikTokPages   []string `yaml:"tiktok_pages"`
	InstagramPage []string `yaml:"instagram_pages"`
	CoinGeckoURL  string   `yaml:"coingecko_url"`
}

// DefaultSources returns the built-in source lists
func DefaultSources() Sources {
	return Sources{
		GoogleGeos: []string{"US", "GB", "IN"},
		SeedTopics: []string{
			"ai", "chatgpt", "super bowl", "taylor swift", "nfl", "nba",
			"bitcoin", "crypto", "tiktok", "instagram", "viral", "meme",
			"challenge", "breaking news", "celebrity", "movie", "netflix",
			"gaming", "fortnite", "minecraft", "ethereum", "solana",
		},
		Subreddits: []string{
			"popular", "all", "news", "technology", "entertainment",
			"gaming", "sports", "music", "movies",
		},
		XQuery:      "trending has:hashtags -is:retweet lang:en",
		XTrendsPage: "https://getdaytrends.com/",
		TikTokPages: []string{
			"https://ads.tiktok.com/business/creativecenter/inspiration/popular/hashtag/pc/en",
			"https://tokboard.com/",
		},
		InstagramPage: []string{
			"https://best-hashtags.com/",
			"https://top-hashtags.com/instagram/",
		},
		CoinGeckoURL: "https://api.coingecko.com/api/v3/search/trending",
	}
}

// LoadSources returns the defaults overlaid with path. An empty path returns the defaults.
func LoadSources(path string) (Sources, error) {
	sources := DefaultSources()
	if path == "" {
		return sources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sources, fmt.Errorf("error reading sources file: %w", err)
	}

	var overlay Sources
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return sources, fmt.Errorf("error parsing sources file: %w", err)
	}

	if overlay.GoogleGeos != nil {
		sources.GoogleGeos = overlay.GoogleGeos
	}
	if overlay.SeedTopics != nil {
		sources.SeedTopics = overlay.SeedTopics
	}
	if overlay.Subreddits != nil {
		sources.Subreddits = overlay.Subreddits
	}
	if overlay.XQuery != "" {
		sources.XQuery = overlay.XQuery
	}
	if overlay.XTrendsPage != "" {
		sources.XTrendsPage = overlay.XTrendsPage
	}
	if overlay.TikTokPages != nil {
		sources.TikTokPages = overlay.TikTokPages
	}
	if overlay.InstagramPage != nil {
		sources.InstagramPage = overlay.InstagramPage
	}
	if overlay.CoinGeckoURL != "" {
		sources.CoinGeckoURL = overlay.CoinGeckoURL
	}
	return sources, nil
}
