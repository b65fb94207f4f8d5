package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

const (
	maxXTrends        = 30
	maxXSearchResults = 100
	minXNameLength    = 4
	maxXNameLength    = 49
)

var tweetVolumePattern = regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+tweets`)

type bearerAuth struct {
	token string
}

func (a bearerAuth) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// X collects trends from the X API v2 recent search when a bearer token is set,
// and from a day-trends page otherwise or when the API fails
type X struct {
	APIHost string

	client     *twitter.Client
	query      string
	trendsPage string
	http       *HTTPClient
	logger     zerolog.Logger
}

// NewX creates an X collector. An empty bearer token disables the API.
func NewX(client *HTTPClient, bearerToken, query, trendsPage string, timeout time.Duration, logger zerolog.Logger) *X {
	x := &X{
		APIHost:    "https://api.twitter.com",
		query:      query,
		trendsPage: trendsPage,
		http:       client,
		logger:     logger.With().Str("collector", "x").Logger(),
	}
	if bearerToken != "" {
		x.client = &twitter.Client{
			Authorizer: bearerAuth{token: bearerToken},
			Client:     &http.Client{Timeout: timeout},
		}
	}
	return x
}

// Name returns the collector name
func (x *X) Name() string {
	return string(trend.PlatformX)
}

// Collect prefers the API and falls back to the day-trends page
func (x *X) Collect(ctx context.Context) (*trend.Set, error) {
	var apiErr error
	if x.client != nil {
		set, err := x.searchHashtags(ctx)
		if err == nil && set.Len() > 0 {
			return set, nil
		}
		apiErr = err
		x.logger.Warn().Err(err).Msg("Recent search unavailable, using trends page")
	}

	set, err := x.scrapeTrendsPage(ctx)
	if err != nil {
		return set, errors.Join(apiErr, err)
	}
	return set, nil
}

type hashtagStats struct {
	name     string
	posts    int
	reposts  int
	position int
}

// searchHashtags aggregates hashtags over one page of recent search results
func (x *X) searchHashtags(ctx context.Context) (*trend.Set, error) {
	x.client.Host = x.APIHost
	resp, err := x.client.TweetRecentSearch(ctx, x.query, twitter.TweetRecentSearchOpts{
		TweetFields: []twitter.TweetField{twitter.TweetFieldEntities, twitter.TweetFieldPublicMetrics},
		MaxResults:  maxXSearchResults,
	})
	if err != nil {
		return nil, fmt.Errorf("recent search: %w", err)
	}
	if resp.Raw == nil {
		return trend.NewSet(), nil
	}

	stats := make(map[string]*hashtagStats)
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil || tweet.Entities == nil {
			continue
		}
		retweets := 0
		if tweet.PublicMetrics != nil {
			retweets = tweet.PublicMetrics.Retweets
		}
		seen := make(map[string]bool)
		for _, tag := range tweet.Entities.HashTags {
			key := trend.NormalizeKey(tag.Tag)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			s, ok := stats[key]
			if !ok {
				s = &hashtagStats{name: "#" + tag.Tag, position: len(stats)}
				stats[key] = s
			}
			s.posts++
			s.reposts += retweets
		}
	}

	ranked := make([]*hashtagStats, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].posts != ranked[j].posts {
			return ranked[i].posts > ranked[j].posts
		}
		return ranked[i].position < ranked[j].position
	})
	if len(ranked) > maxXTrends {
		ranked = ranked[:maxXTrends]
	}

	set := trend.NewSet()
	for _, s := range ranked {
		r := trend.NewRecord(s.name, trend.PlatformX)
		r.Metrics[trend.MetricXPosts] = float64(s.posts)
		r.Metrics[trend.MetricXReposts] = float64(s.reposts)
		r.Locations = []string{"global"}
		set.Put(r)
	}
	return set, nil
}

// scrapeTrendsPage reads the trend table of a day-trends page
func (x *X) scrapeTrendsPage(ctx context.Context) (*trend.Set, error) {
	set := trend.NewSet()
	if x.trendsPage == "" {
		return set, nil
	}

	body, err := x.http.Get(ctx, x.trendsPage, "")
	if err != nil {
		return set, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return set, fmt.Errorf("failed to parse trends page: %w", err)
	}

	doc.Find("td.main").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		name := strings.TrimSpace(cell.Find("a").First().Text())
		if len(name) < minXNameLength || len(name) > maxXNameLength || strings.HasPrefix(name, "http") {
			return true
		}

		r := trend.NewRecord(name, trend.PlatformX)
		if m := tweetVolumePattern.FindStringSubmatch(cell.Find(".desc").Text()); m != nil {
			if v, ok := parseCount(strings.ReplaceAll(m[1], " ", "")); ok {
				r.Metrics[trend.MetricXPosts] = v
			}
		}
		r.Locations = []string{"global"}
		set.Add(r)
		return set.Len() < maxXTrends
	})

	return set, nil
}
