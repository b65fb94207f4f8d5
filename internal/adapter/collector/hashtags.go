package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

var hashtagPattern = regexp.MustCompile(`#(\w{3,30})\b`)

// Hashtags collects hashtags from aggregator pages for one platform
type Hashtags struct {
	platform trend.Platform
	pages    []string
	limit    int
	http     *HTTPClient
	logger   zerolog.Logger
}

// NewTikTok creates a hashtag collector for TikTok aggregator pages
func NewTikTok(client *HTTPClient, pages []string, logger zerolog.Logger) *Hashtags {
	return newHashtags(trend.PlatformTikTok, client, pages, 25, logger)
}

// NewInstagram creates a hashtag collector for Instagram aggregator pages
func NewInstagram(client *HTTPClient, pages []string, logger zerolog.Logger) *Hashtags {
	return newHashtags(trend.PlatformInstagram, client, pages, 30, logger)
}

func newHashtags(platform trend.Platform, client *HTTPClient, pages []string, limit int, logger zerolog.Logger) *Hashtags {
	return &Hashtags{
		platform: platform,
		pages:    pages,
		limit:    limit,
		http:     client,
		logger:   logger.With().Str("collector", string(platform)).Logger(),
	}
}

// Name returns the collector name
func (h *Hashtags) Name() string {
	return string(h.platform)
}

// Collect reads pages in order until the tag limit is reached
func (h *Hashtags) Collect(ctx context.Context) (*trend.Set, error) {
	set := trend.NewSet()
	var errs []error

	for _, page := range h.pages {
		if set.Len() >= h.limit {
			break
		}
		body, err := h.http.Get(ctx, page, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tags, err := extractHashtags(body)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			continue
		}
		h.logger.Debug().Str("page", page).Int("hashtags", len(tags)).Msg("Fetched hashtag page")

		for _, tag := range tags {
			if set.Len() >= h.limit {
				break
			}
			r := trend.NewRecord("#"+tag, h.platform)
			r.Locations = []string{"global"}
			set.Add(r)
		}
	}

	return set, errors.Join(errs...)
}

// extractHashtags returns the distinct hashtags in the visible text of an HTML page,
// in page order
func extractHashtags(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	seen := make(map[string]bool)
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(doc.Text(), -1) {
		key := trend.NormalizeKey(m[1])
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, m[1])
	}
	return tags, nil
}
