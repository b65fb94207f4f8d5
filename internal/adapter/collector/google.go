package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

const (
	maxAutocompleteSeeds       = 10
	maxSuggestionsPerSeed      = 5
	minSuggestionLength        = 6
	defaultGoogleTrendsBaseURL = "https://trends.google.com"
	defaultSuggestBaseURL      = "https://suggestqueries.google.com"
)

// Google collects the daily trending searches RSS per geo plus autocomplete
// suggestions for seed topics
type Google struct {
	TrendsURL  string
	SuggestURL string

	http   *HTTPClient
	geos   []string
	seeds  []string
	parser *gofeed.Parser
	logger zerolog.Logger
}

// NewGoogle creates a Google collector
func NewGoogle(client *HTTPClient, geos, seeds []string, logger zerolog.Logger) *Google {
	return &Google{
		http:       client,
		geos:       geos,
		seeds:      seeds,
		TrendsURL:  defaultGoogleTrendsBaseURL,
		SuggestURL: defaultSuggestBaseURL,
		logger:     logger.With().Str("collector", "google").Logger(),
		parser:     gofeed.NewParser(),
	}
}

// Name returns the collector name
func (g *Google) Name() string {
	return string(trend.PlatformGoogle)
}

// Collect fetches every geo feed, then the autocomplete suggestions
func (g *Google) Collect(ctx context.Context) (*trend.Set, error) {
	set := trend.NewSet()
	var errs []error

	for _, geo := range g.geos {
		n, err := g.collectFeed(ctx, set, geo)
		if err != nil {
			errs = append(errs, fmt.Errorf("geo %s: %w", geo, err))
			continue
		}
		g.logger.Debug().Str("geo", geo).Int("trends", n).Msg("Fetched trending searches")
	}

	seeds := g.seeds
	if len(seeds) > maxAutocompleteSeeds {
		seeds = seeds[:maxAutocompleteSeeds]
	}
	for _, seed := range seeds {
		if err := g.collectSuggestions(ctx, set, seed); err != nil {
			errs = append(errs, fmt.Errorf("autocomplete %q: %w", seed, err))
		}
	}

	return set, errors.Join(errs...)
}

func (g *Google) collectFeed(ctx context.Context, set *trend.Set, geo string) (int, error) {
	feedURL := fmt.Sprintf("%s/trending/rss?geo=%s", g.TrendsURL, url.QueryEscape(geo))
	body, err := g.http.Get(ctx, feedURL, "application/rss+xml, application/xml;q=0.9, */*;q=0.8")
	if err != nil {
		return 0, err
	}

	feed, err := g.parser.ParseString(string(body))
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	location := strings.ToLower(geo)
	n := 0
	for _, item := range feed.Items {
		name := strings.TrimSpace(item.Title)
		if name == "" {
			continue
		}
		key := trend.NormalizeKey(name)
		if r, ok := set.Get(key); ok {
			r.Locations = append(r.Locations, location)
			continue
		}

		r := trend.NewRecord(name, trend.PlatformGoogle)
		if traffic, ok := approxTraffic(item); ok {
			r.Metrics[trend.MetricGoogleSearches] = traffic
		}
		r.Locations = []string{location}
		if set.Put(r) {
			n++
		}
	}
	return n, nil
}

func (g *Google) collectSuggestions(ctx context.Context, set *trend.Set, seed string) error {
	q := url.Values{}
	q.Set("client", "firefox")
	q.Set("q", seed+" trending")

	body, err := g.http.Get(ctx, g.SuggestURL+"/complete/search?"+q.Encode(), "application/json")
	if err != nil {
		return err
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to decode suggestions: %w", err)
	}
	if len(payload) < 2 {
		return nil
	}
	var suggestions []string
	if err := json.Unmarshal(payload[1], &suggestions); err != nil {
		return fmt.Errorf("failed to decode suggestions: %w", err)
	}

	if len(suggestions) > maxSuggestionsPerSeed {
		suggestions = suggestions[:maxSuggestionsPerSeed]
	}
	for _, s := range suggestions {
		if len(s) < minSuggestionLength {
			continue
		}
		r := trend.NewRecord(s, trend.PlatformGoogle)
		r.Locations = []string{"global"}
		set.Add(r)
	}
	return nil
}

// approxTraffic reads the ht:approx_traffic extension, e.g. "200,000+"
func approxTraffic(item *gofeed.Item) (float64, bool) {
	values := item.Extensions["ht"]["approx_traffic"]
	if len(values) == 0 {
		return 0, false
	}
	return parseCount(values[0].Value)
}

// parseCount parses counts such as "200,000+", "$1,234.5" or "12.5K"
func parseCount(s string) (float64, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "+")
	multiplier := 1.0
	if s != "" {
		switch s[len(s)-1] {
		case 'K', 'k':
			multiplier = 1_000
		case 'M', 'm':
			multiplier = 1_000_000
		case 'B', 'b':
			multiplier = 1_000_000_000
		}
		if multiplier != 1 {
			s = s[:len(s)-1]
		}
	}

	var b strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
