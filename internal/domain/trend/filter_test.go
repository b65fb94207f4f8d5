package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterApply(t *testing.T) {
	docs := []Document{
		{Key: "b", SignalScore: 50, Lifecycle: LifecyclePeak, Category: "news", Platforms: map[Platform]bool{PlatformX: true}},
		{Key: "a", SignalScore: 50, Lifecycle: LifecyclePeak, Category: "crypto", Platforms: map[Platform]bool{PlatformCoinGecko: true}},
		{Key: "c", SignalScore: 90, Lifecycle: LifecycleNew, Category: "news", Platforms: map[Platform]bool{PlatformX: true, PlatformGoogle: true}},
		{Key: "d", SignalScore: 10, Lifecycle: LifecycleDeclining, Category: "news"},
	}

	keys := func(ds []Document) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.Key
		}
		return out
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, keys(Filter{}.Apply(docs)))
	assert.Equal(t, []string{"c", "a", "b"}, keys(Filter{MinScore: 40}.Apply(docs)))
	assert.Equal(t, []string{"a", "b"}, keys(Filter{Lifecycle: LifecyclePeak}.Apply(docs)))
	assert.Equal(t, []string{"c", "b"}, keys(Filter{Platform: PlatformX}.Apply(docs)))
	assert.Equal(t, []string{"c"}, keys(Filter{Category: "news", Limit: 1}.Apply(docs)))
	assert.Empty(t, Filter{MinScore: 95}.Apply(docs))
}
