package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Breaking News": "breakingnews",
		"#AI-Trend!":    "aitrend",
		"Café 2025":     "caf2025",
		"***":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestPostSlug(t *testing.T) {
	assert.Equal(t, "breaking-news", PostSlug("Breaking News"))
	assert.Equal(t, "super-bowl-lix", PostSlug("Super_Bowl LIX!"))
}

func TestFormatCount(t *testing.T) {
	cases := map[float64]string{
		999:           "999",
		1500:          "1.5K",
		2_000_000:     "2.0M",
		3_400_000_000: "3.4B",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCount(in))
	}
}

func TestCountPlatformsIgnoresFalseFlags(t *testing.T) {
	r := NewRecord("AI", PlatformGoogle)
	r.Platforms[PlatformX] = false
	r.Platforms[PlatformTikTok] = true

	assert.Equal(t, 2, r.CountPlatforms())
	assert.Equal(t, []Platform{PlatformGoogle, PlatformTikTok}, r.PlatformList())
}

func TestPlatformListOrdersUnknownPlatformsLast(t *testing.T) {
	r := NewRecord("AI", PlatformReddit)
	r.Platforms["youtube"] = true
	r.Platforms["bluesky"] = true
	r.Platforms[PlatformGoogle] = true

	assert.Equal(t, []Platform{PlatformGoogle, PlatformReddit, "bluesky", "youtube"}, r.PlatformList())
}

func TestCloneIsDeep(t *testing.T) {
	r := NewRecord("AI", PlatformGoogle)
	r.Metrics[MetricGoogleSearches] = 10
	r.Locations = append(r.Locations, "us")

	c := r.Clone()
	c.Platforms[PlatformX] = true
	c.Metrics[MetricGoogleSearches] = 20
	c.Locations[0] = "uk"

	assert.False(t, r.HasPlatform(PlatformX))
	assert.Equal(t, 10.0, r.Metrics.Get(MetricGoogleSearches))
	assert.Equal(t, "us", r.Locations[0])
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	s := NewSet()
	require.True(t, s.Put(NewRecord("Zeta", PlatformGoogle)))
	require.True(t, s.Put(NewRecord("Alpha", PlatformGoogle)))
	require.True(t, s.Put(NewRecord("zeta!", PlatformX)))

	assert.Equal(t, []string{"zeta", "alpha"}, s.Keys())
	r, ok := s.Get("zeta")
	require.True(t, ok)
	assert.True(t, r.HasPlatform(PlatformX))
}

func TestSetRejectsEmptyKeys(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Put(NewRecord("🔥🔥", PlatformGoogle)))
	assert.Equal(t, 0, s.Len())
}

func TestSetAddKeepsFirst(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(NewRecord("AI", PlatformGoogle)))
	assert.False(t, s.Add(NewRecord("ai", PlatformX)))

	r, _ := s.Get("ai")
	assert.Equal(t, "AI", r.Name)
}

func TestLifecycleBoundaries(t *testing.T) {
	cases := map[int]Lifecycle{
		0:   LifecycleDeclining,
		39:  LifecycleDeclining,
		40:  LifecyclePeak,
		59:  LifecyclePeak,
		60:  LifecycleRising,
		79:  LifecycleRising,
		80:  LifecycleNew,
		100: LifecycleNew,
	}
	for score, want := range cases {
		assert.Equal(t, want, LifecycleFor(score), "score %d", score)
	}
}

func TestMomentumBoundaries(t *testing.T) {
	assert.Equal(t, MomentumStable, MomentumFor(69))
	assert.Equal(t, MomentumStable, MomentumFor(70))
	assert.Equal(t, MomentumRising, MomentumFor(71))
}

func TestFallbackNews(t *testing.T) {
	news := FallbackNews("Breaking News", []Platform{PlatformGoogle, PlatformX})

	assert.Equal(t, "Breaking News Takes Over The Internet", news.Headline)
	assert.Equal(t, "The topic 'Breaking News' is trending across google, x.", news.Summary)
	assert.Equal(t, "rising", news.Status)
	assert.Equal(t, "entertainment", news.Category)
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r := NewRecord("#BreakingNews", PlatformGoogle)
	r.Platforms[PlatformX] = true
	r.Metrics[MetricGoogleSearches] = 150000
	r.Locations = []string{"a", "b", "c", "d", "e", "f"}
	r.SignalScore = 100
	r.MultiPlatform = true

	doc := NewDocument(r, News{Headline: "h", Category: "news"}, now)

	assert.Equal(t, "BreakingNews", doc.Trend)
	assert.Equal(t, "breakingnews", doc.Key)
	assert.Equal(t, "breakingnews", doc.Slug)
	assert.Equal(t, 2, doc.PlatformCount)
	assert.Equal(t, "150.0K", doc.MetricsDisplay[MetricGoogleSearches])
	assert.Equal(t, LifecycleNew, doc.Lifecycle)
	assert.Equal(t, MomentumRising, doc.Momentum)
	assert.Len(t, doc.Locations, 5)
	assert.Equal(t, "rising", doc.Analysis.Status)
	assert.Equal(t, []Snapshot{{Timestamp: now, SignalScore: 100}}, doc.History)
}

func TestNewIndexSortsFiles(t *testing.T) {
	idx := NewIndex([]string{"zeta", "alpha"}, time.Now())

	assert.Equal(t, []string{"alpha.json", "zeta.json"}, idx.Files)
	assert.Equal(t, []string{"alpha", "zeta"}, idx.Keys())
}
