package trend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// maxDocumentLocations caps the locations written into a document
const maxDocumentLocations = 5

// News is the generated editorial content for a trend
type News struct {
	Headline    string `json:"headline"`
	Summary     string `json:"summary"`
	OriginStory string `json:"origin_story"`
	Analysis    string `json:"analysis"`
	Impact      string `json:"impact"`
	Status      string `json:"status"`
	Category    string `json:"category"`
}

// FallbackNews builds content from the trend name and platforms only.
// It is used whenever the content generator is unavailable or returns garbage.
func FallbackNews(name string, platforms []Platform) News {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return News{
		Headline:    fmt.Sprintf("%s Takes Over The Internet", name),
		Summary:     fmt.Sprintf("The topic '%s' is trending across %s.", name, strings.Join(names, ", ")),
		OriginStory: "This trend emerged from viral social media content.",
		Impact:      "It's capturing attention across multiple platforms.",
		Status:      "rising",
		Category:    "entertainment",
	}
}

// Analysis is the editorial block of a persisted document
type Analysis struct {
	Headline       string `json:"headline"`
	Summary        string `json:"summary"`
	OriginStory    string `json:"origin_story"`
	ExpertAnalysis string `json:"expert_analysis"`
	Impact         string `json:"impact"`
	Status         string `json:"status"`
}

// Document is the persisted form of a finalized record
type Document struct {
	Trend          string            `json:"trend"`
	Key            string            `json:"key"`
	Slug           string            `json:"slug"`
	Category       string            `json:"category"`
	Platforms      map[Platform]bool `json:"platforms"`
	PlatformCount  int               `json:"platform_count"`
	Metrics        Metrics           `json:"metrics"`
	MetricsDisplay map[string]string `json:"metrics_display"`
	SignalScore    int               `json:"signal_score"`
	Momentum       Momentum          `json:"momentum"`
	Lifecycle      Lifecycle         `json:"lifecycle"`
	MultiPlatform  bool              `json:"multi_platform"`
	Locations      []string          `json:"locations"`
	RelatedTrends  []string          `json:"related_trends"`
	Analysis       Analysis          `json:"analysis"`
	Image          *Image            `json:"image,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
	History        []Snapshot        `json:"history"`
}

// NewDocument finalizes a scored record. History holds only the current snapshot;
// callers merge in the persisted history.
func NewDocument(r *Record, news News, now time.Time) Document {
	name := r.DisplayName()

	platforms := make(map[Platform]bool, len(r.Platforms))
	for _, p := range r.PlatformList() {
		platforms[p] = true
	}

	metrics := make(Metrics, len(r.Metrics))
	display := make(map[string]string, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
		display[k] = FormatCount(v)
	}

	locations := r.Locations
	if len(locations) > maxDocumentLocations {
		locations = locations[:maxDocumentLocations]
	}

	category := news.Category
	if category == "" {
		category = "entertainment"
	}
	status := news.Status
	if status == "" {
		status = "rising"
	}

	return Document{
		Trend:          name,
		Key:            r.Key,
		Slug:           PostSlug(name),
		Category:       category,
		Platforms:      platforms,
		PlatformCount:  len(platforms),
		Metrics:        metrics,
		MetricsDisplay: display,
		SignalScore:    r.SignalScore,
		Momentum:       MomentumFor(r.SignalScore),
		Lifecycle:      LifecycleFor(r.SignalScore),
		MultiPlatform:  r.MultiPlatform,
		Locations:      append([]string{}, locations...),
		RelatedTrends:  append([]string{}, r.Related...),
		Analysis: Analysis{
			Headline:       news.Headline,
			Summary:        news.Summary,
			OriginStory:    news.OriginStory,
			ExpertAnalysis: news.Analysis,
			Impact:         news.Impact,
			Status:         status,
		},
		Timestamp: now.UTC(),
		History:   []Snapshot{{Timestamp: now.UTC(), SignalScore: r.SignalScore}},
	}
}

// Index enumerates every persisted record
type Index struct {
	Files       []string  `json:"files"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewIndex builds an index over the given keys, sorted
func NewIndex(keys []string, now time.Time) Index {
	files := make([]string, 0, len(keys))
	for _, k := range keys {
		files = append(files, k+".json")
	}
	sort.Strings(files)
	return Index{Files: files, GeneratedAt: now.UTC()}
}

// Keys returns the record keys listed in the index
func (i Index) Keys() []string {
	keys := make([]string, 0, len(i.Files))
	for _, f := range i.Files {
		keys = append(keys, strings.TrimSuffix(f, ".json"))
	}
	return keys
}
