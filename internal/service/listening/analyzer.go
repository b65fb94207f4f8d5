package listening

import (
	"sort"
	"strings"

	"trendradar/internal/domain/trend"
)

// Score weights and thresholds
const (
	pointsPerPlatform = 25
	pointsPerLocation = 5
	maxLocationPoints = 25
	maxScore          = 100

	googleSearchesThreshold = 100_000
	xPostsThreshold         = 50_000
	xRepostsThreshold       = 10_000
	tiktokViewsThreshold    = 1_000_000
	instagramPostsThreshold = 100_000
)

// AnalyzerConfig contains the aggregation thresholds
type AnalyzerConfig struct {
	MinPlatforms     int
	MaxTrendsPerRun  int
	HighTrustSources []trend.Platform
}

// Analyzer merges per-platform trend sets into scored, grouped records
type Analyzer struct {
	config    AnalyzerConfig
	highTrust map[trend.Platform]bool
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	highTrust := make(map[trend.Platform]bool, len(config.HighTrustSources))
	for _, p := range config.HighTrustSources {
		highTrust[p] = true
	}
	return &Analyzer{
		config:    config,
		highTrust: highTrust,
	}
}

// AggregateStats counts records at each aggregation stage
type AggregateStats struct {
	Merged    int
	Qualified int
	Grouped   int
}

// Aggregate runs merge, filter, group and score over the sources
func (a *Analyzer) Aggregate(sources ...*trend.Set) (*trend.Set, AggregateStats) {
	merged := a.Merge(sources...)
	filtered := a.Filter(merged)
	grouped := a.Group(filtered)
	for _, r := range grouped.Records() {
		r.SignalScore = a.Score(r)
	}
	return grouped, AggregateStats{
		Merged:    merged.Len(),
		Qualified: filtered.Len(),
		Grouped:   grouped.Len(),
	}
}

// Merge combines sources in order. The first occurrence of a key is copied; later
// ones add their platforms, overwrite metrics of the same name and append locations.
func (a *Analyzer) Merge(sources ...*trend.Set) *trend.Set {
	merged := trend.NewSet()
	for _, source := range sources {
		for _, r := range source.Records() {
			existing, ok := merged.Get(r.Key)
			if !ok {
				merged.Put(r.Clone())
				continue
			}
			mergeInto(existing, r)
			existing.Locations = append(existing.Locations, r.Locations...)
		}
	}
	for _, r := range merged.Records() {
		r.PlatformCount = r.CountPlatforms()
	}
	return merged
}

// Filter keeps records seen on at least MinPlatforms platforms, or on a high-trust
// platform. Survivors get deduplicated locations and the multi-platform flag.
func (a *Analyzer) Filter(merged *trend.Set) *trend.Set {
	filtered := trend.NewSet()
	for _, r := range merged.Records() {
		r.PlatformCount = r.CountPlatforms()
		if !a.qualifies(r) {
			continue
		}
		r.Locations = uniqueLocations(r.Locations)
		r.MultiPlatform = r.PlatformCount >= 2
		filtered.Put(r)
	}
	return filtered
}

func (a *Analyzer) qualifies(r *trend.Record) bool {
	if r.PlatformCount >= a.config.MinPlatforms {
		return true
	}
	if r.PlatformCount < 1 {
		return false
	}
	for p := range a.highTrust {
		if r.HasPlatform(p) {
			return true
		}
	}
	return false
}

// Group folds records whose keys contain one another into the first of them.
// Matching is only ever against the group's representative, never transitive.
// Related lists member names as collected, so hashtags keep their leading '#';
// only the document's own trend name is shown without it.
func (a *Analyzer) Group(filtered *trend.Set) *trend.Set {
	grouped := trend.NewSet()
	records := filtered.Records()
	used := make(map[string]bool, len(records))

	for i, rep := range records {
		if used[rep.Key] {
			continue
		}
		used[rep.Key] = true
		members := []string{rep.Name}

		for j, other := range records {
			if i == j || used[other.Key] {
				continue
			}
			if strings.Contains(rep.Key, other.Key) || strings.Contains(other.Key, rep.Key) {
				members = append(members, other.Name)
				used[other.Key] = true
				mergeInto(rep, other)
			}
		}

		if len(members) > 1 {
			rep.Related = members
		} else {
			rep.Related = []string{}
		}
		rep.PlatformCount = rep.CountPlatforms()
		grouped.Put(rep)
	}
	return grouped
}

// Score computes the 0-100 signal score of a record
func (a *Analyzer) Score(r *trend.Record) int {
	score := r.CountPlatforms() * pointsPerPlatform

	if r.Metrics.Get(trend.MetricGoogleSearches) > googleSearchesThreshold {
		score += 20
	}
	if r.Metrics.Get(trend.MetricXPosts) > xPostsThreshold {
		score += 15
	}
	if r.Metrics.Get(trend.MetricXReposts) > xRepostsThreshold {
		score += 10
	}
	if r.Metrics.Get(trend.MetricTikTokViews) > tiktokViewsThreshold {
		score += 20
	}
	if r.Metrics.Get(trend.MetricInstagramPosts) > instagramPostsThreshold {
		score += 15
	}

	score += min(len(uniqueLocations(r.Locations))*pointsPerLocation, maxLocationPoints)

	return max(0, min(score, maxScore))
}

// Select returns the highest scoring records, ties kept in set order
func (a *Analyzer) Select(scored *trend.Set) []*trend.Record {
	records := scored.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SignalScore > records[j].SignalScore
	})
	if limit := a.config.MaxTrendsPerRun; limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// AppendHistory appends a snapshot and keeps the newest limit entries
func AppendHistory(prev []trend.Snapshot, snap trend.Snapshot, limit int) []trend.Snapshot {
	history := make([]trend.Snapshot, 0, len(prev)+1)
	history = append(history, prev...)
	history = append(history, snap)
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func mergeInto(dst, src *trend.Record) {
	if dst.Platforms == nil {
		dst.Platforms = make(map[trend.Platform]bool)
	}
	for p, present := range src.Platforms {
		if present {
			dst.Platforms[p] = true
		}
	}
	if dst.Metrics == nil {
		dst.Metrics = make(trend.Metrics)
	}
	for name, v := range src.Metrics {
		dst.Metrics[name] = v
	}
}

func uniqueLocations(locations []string) []string {
	seen := make(map[string]bool, len(locations))
	out := make([]string, 0, len(locations))
	for _, l := range locations {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
