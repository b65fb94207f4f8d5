// internal/adapter/images/unsplash.go

package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/rs/zerolog"

	"trendradar/internal/adapter/collector"
	"trendradar/internal/domain/trend"
)

const maxQueryLength = 50

var unsafeQueryChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// unsplashSearch is the response of /search/photos
type unsplashSearch struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

// Unsplash finds landscape photos through the Unsplash search API
type Unsplash struct {
	baseURL   string
	accessKey string
	http      *collector.HTTPClient
	logger    zerolog.Logger
}

// NewUnsplash creates an Unsplash image finder
func NewUnsplash(client *collector.HTTPClient, baseURL, accessKey string, logger zerolog.Logger) *Unsplash {
	return &Unsplash{
		baseURL:   baseURL,
		accessKey: accessKey,
		http:      client,
		logger:    logger.With().Str("component", "images").Logger(),
	}
}

// FindImage returns the first search result for query, or trend.ErrNoImage.
// Unsplash answers 403 once the hourly quota is spent; that is reported as collector.ErrRateLimited.
func (u *Unsplash) FindImage(ctx context.Context, query string) (*trend.Image, error) {
	q := unsafeQueryChars.ReplaceAllString(query, "")
	if len(q) > maxQueryLength {
		q = q[:maxQueryLength]
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	header := http.Header{}
	header.Set("Authorization", "Client-ID "+u.accessKey)
	header.Set("Accept", "application/json")
	header.Set("Accept-Version", "v1")

	body, err := u.http.GetWithHeader(ctx, u.baseURL+"/search/photos?"+params.Encode(), header)
	if err != nil {
		var statusErr *collector.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusForbidden {
			return nil, fmt.Errorf("unsplash: %w", collector.ErrRateLimited)
		}
		return nil, err
	}

	var resp unsplashSearch
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode unsplash search: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, trend.ErrNoImage
	}

	photo := resp.Results[0]
	u.logger.Debug().Str("query", q).Str("credit", photo.User.Name).Msg("Found image")
	return &trend.Image{
		URL:        photo.URLs.Regular,
		Thumb:      photo.URLs.Small,
		Credit:     photo.User.Name,
		CreditLink: photo.User.Links.HTML,
	}, nil
}
