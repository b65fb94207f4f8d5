package trend

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Platform identifies a trend source
type Platform string

const (
	PlatformGoogle    Platform = "google"
	PlatformX         Platform = "x"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformReddit    Platform = "reddit"
	PlatformCoinGecko Platform = "coingecko"
)

// platformOrder is the order platforms are listed in whenever they are rendered as text
var platformOrder = []Platform{
	PlatformGoogle,
	PlatformX,
	PlatformTikTok,
	PlatformInstagram,
	PlatformReddit,
	PlatformCoinGecko,
}

// Metric names reported by collectors
const (
	MetricGoogleSearches  = "google_searches"
	MetricXPosts          = "x_posts"
	MetricXReposts        = "x_reposts"
	MetricTikTokViews     = "tiktok_views"
	MetricTikTokVideos    = "tiktok_videos"
	MetricInstagramPosts  = "instagram_posts"
	MetricInstagramReach  = "instagram_reach"
	MetricRedditUpvotes   = "reddit_upvotes"
	MetricRedditComments  = "reddit_comments"
	MetricCoinGeckoRank   = "coingecko_rank"
	MetricCoinGeckoVolume = "coingecko_volume"
)

// ErrNotFound is returned by stores when no record exists for a key
var ErrNotFound = errors.New("trend not found")

// Metrics maps a metric name to its value. Names differ per platform.
type Metrics map[string]float64

// Get returns the metric value or zero when absent
func (m Metrics) Get(name string) float64 {
	if m == nil {
		return 0
	}
	return m[name]
}

// Snapshot is one point of a record's score history
type Snapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	SignalScore int       `json:"signal_score"`
}

// Record is a trend observed on one or more platforms during a run
type Record struct {
	Key           string
	Name          string
	Platforms     map[Platform]bool
	Metrics       Metrics
	Locations     []string
	Related       []string
	SignalScore   int
	PlatformCount int
	MultiPlatform bool
	History       []Snapshot
}

// NewRecord creates a record seen on a single platform
func NewRecord(name string, platform Platform) *Record {
	return &Record{
		Key:       NormalizeKey(name),
		Name:      name,
		Platforms: map[Platform]bool{platform: true},
		Metrics:   Metrics{},
		Locations: []string{},
		Related:   []string{},
	}
}

// CountPlatforms counts the platforms flagged true
func (r *Record) CountPlatforms() int {
	n := 0
	for _, present := range r.Platforms {
		if present {
			n++
		}
	}
	return n
}

// HasPlatform reports whether the platform is flagged true
func (r *Record) HasPlatform(p Platform) bool {
	return r.Platforms[p]
}

// PlatformList returns the present platforms in display order.
// Platforms outside the known set follow in lexical order.
func (r *Record) PlatformList() []Platform {
	list := make([]Platform, 0, len(r.Platforms))
	known := make(map[Platform]bool, len(platformOrder))
	for _, p := range platformOrder {
		known[p] = true
		if r.Platforms[p] {
			list = append(list, p)
		}
	}

	var extra []Platform
	for p, present := range r.Platforms {
		if present && !known[p] {
			extra = append(extra, p)
		}
	}
	slices.Sort(extra)

	return append(list, extra...)
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	c.Platforms = make(map[Platform]bool, len(r.Platforms))
	for p, v := range r.Platforms {
		c.Platforms[p] = v
	}
	c.Metrics = make(Metrics, len(r.Metrics))
	for k, v := range r.Metrics {
		c.Metrics[k] = v
	}
	c.Locations = append([]string{}, r.Locations...)
	c.Related = append([]string{}, r.Related...)
	c.History = append([]Snapshot(nil), r.History...)
	return &c
}

// DisplayName is the name with hashtag marks removed
func (r *Record) DisplayName() string {
	return strings.TrimSpace(strings.ReplaceAll(r.Name, "#", ""))
}

// NormalizeKey lowercases a name and drops everything but ASCII letters and digits
func NormalizeKey(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PostSlug turns a name into a dash separated slug for page URLs
func PostSlug(name string) string {
	lower := strings.ToLower(name)
	lower = strings.NewReplacer(" ", "-", "_", "-").Replace(lower)
	var b strings.Builder
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FormatCount renders large numbers compactly (1500 -> 1.5K, 2000000 -> 2.0M)
func FormatCount(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
