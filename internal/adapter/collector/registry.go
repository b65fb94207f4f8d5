package collector

import (
	"fmt"

	"github.com/rs/zerolog"

	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
)

// New builds the configured collectors in merge order
func New(cfg config.CollectorConfig, sources config.Sources, logger zerolog.Logger) ([]trend.Collector, error) {
	client := NewHTTPClient(cfg.RequestTimeout, cfg.RetryDelay, cfg.UserAgents)

	collectors := make([]trend.Collector, 0, len(cfg.Sources))
	seen := make(map[string]bool, len(cfg.Sources))
	for _, name := range cfg.Sources {
		if seen[name] {
			return nil, fmt.Errorf("collector %s listed twice", name)
		}
		seen[name] = true

		switch trend.Platform(name) {
		case trend.PlatformGoogle:
			collectors = append(collectors, NewGoogle(client, sources.GoogleGeos, sources.SeedTopics, logger))
		case trend.PlatformX:
			collectors = append(collectors, NewX(client, cfg.TwitterBearerToken, sources.XQuery, sources.XTrendsPage, cfg.RequestTimeout, logger))
		case trend.PlatformTikTok:
			collectors = append(collectors, NewTikTok(client, sources.TikTokPages, logger))
		case trend.PlatformInstagram:
			collectors = append(collectors, NewInstagram(client, sources.InstagramPage, logger))
		case trend.PlatformReddit:
			collectors = append(collectors, NewReddit(client, sources.Subreddits, logger))
		case trend.PlatformCoinGecko:
			collectors = append(collectors, NewCoinGecko(client, sources.CoinGeckoURL, logger))
		default:
			return nil, fmt.Errorf("unsupported collector: %s", name)
		}
	}
	return collectors, nil
}
