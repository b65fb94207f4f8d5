package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

// coinGeckoTrending is the response of /api/v3/search/trending
type coinGeckoTrending struct {
	Coins []struct {
		Item struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Score         int    `json:"score"`
			Data          struct {
				TotalVolume string `json:"total_volume"`
			} `json:"data"`
		} `json:"item"`
	} `json:"coins"`
}

// CoinGecko collects the trending coins list
type CoinGecko struct {
	url    string
	http   *HTTPClient
	logger zerolog.Logger
}

// NewCoinGecko creates a CoinGecko collector
func NewCoinGecko(client *HTTPClient, url string, logger zerolog.Logger) *CoinGecko {
	return &CoinGecko{
		url:    url,
		http:   client,
		logger: logger.With().Str("collector", "coingecko").Logger(),
	}
}

// Name returns the collector name
func (c *CoinGecko) Name() string {
	return string(trend.PlatformCoinGecko)
}

// Collect fetches trending coins. The rank metric is the 1-based trending position.
func (c *CoinGecko) Collect(ctx context.Context) (*trend.Set, error) {
	set := trend.NewSet()

	body, err := c.http.Get(ctx, c.url, "application/json")
	if err != nil {
		return set, err
	}

	var resp coinGeckoTrending
	if err := json.Unmarshal(body, &resp); err != nil {
		return set, fmt.Errorf("failed to decode trending coins: %w", err)
	}

	for _, coin := range resp.Coins {
		name := strings.TrimSpace(coin.Item.Name)
		if name == "" {
			continue
		}
		r := trend.NewRecord(name, trend.PlatformCoinGecko)
		r.Metrics[trend.MetricCoinGeckoRank] = float64(coin.Item.Score + 1)
		if v, ok := parseCount(coin.Item.Data.TotalVolume); ok {
			r.Metrics[trend.MetricCoinGeckoVolume] = v
		}
		r.Locations = []string{"global"}
		set.Add(r)
	}
	c.logger.Debug().Int("coins", set.Len()).Msg("Fetched trending coins")

	return set, nil
}
