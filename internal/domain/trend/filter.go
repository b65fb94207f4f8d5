package trend

import "sort"

// Filter defines criteria for listing stored trends
type Filter struct {
	MinScore  int
	Lifecycle Lifecycle
	Platform  Platform
	Category  string
	Limit     int
}

// Matches reports whether doc satisfies every set criterion
func (f Filter) Matches(doc Document) bool {
	if doc.SignalScore < f.MinScore {
		return false
	}
	if f.Lifecycle != "" && doc.Lifecycle != f.Lifecycle {
		return false
	}
	if f.Platform != "" && !doc.Platforms[f.Platform] {
		return false
	}
	if f.Category != "" && doc.Category != f.Category {
		return false
	}
	return true
}

// Apply filters docs, orders them by score (highest first, then key) and applies the limit
func (f Filter) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SignalScore != out[j].SignalScore {
			return out[i].SignalScore > out[j].SignalScore
		}
		return out[i].Key < out[j].Key
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
