package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendradar/internal/domain/trend"
)

func testDocument(name string, score int, platforms ...trend.Platform) trend.Document {
	r := trend.NewRecord(name, platforms[0])
	for _, p := range platforms[1:] {
		r.Platforms[p] = true
	}
	r.SignalScore = score
	return trend.NewDocument(r, trend.News{}, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
}

func TestFileStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc := testDocument("Breaking News", 95, trend.PlatformGoogle, trend.PlatformX)
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "breakingnews")
	require.NoError(t, err)
	assert.Equal(t, doc.Trend, got.Trend)
	assert.Equal(t, 95, got.SignalScore)
	assert.True(t, got.Platforms[trend.PlatformX])
	assert.Equal(t, doc.History[0].Timestamp, got.History[0].Timestamp)

	_, err = os.Stat(filepath.Join(store.Dir(), "breakingnews.json"))
	assert.NoError(t, err)
}

func TestFileStoreGetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nothing")
	assert.ErrorIs(t, err, trend.ErrNotFound)
}

func TestFileStoreGetCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	_, err = store.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, trend.ErrNotFound)
}

func TestFileStoreKeysSkipIndexAndTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, testDocument("Zeta", 10, trend.PlatformGoogle)))
	require.NoError(t, store.Save(ctx, testDocument("Alpha", 20, trend.PlatformGoogle)))
	require.NoError(t, store.WriteIndex(ctx, trend.NewIndex([]string{"alpha", "zeta"}, time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.json"), 0o755))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, keys)
}

func TestFileStoreWriteIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WriteIndex(ctx, trend.NewIndex([]string{"zeta", "alpha"}, now)))

	raw, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []any{"alpha.json", "zeta.json"}, decoded["files"])
	assert.Equal(t, "2026-10-18T12:00:00Z", decoded["generated_at"])

	index, err := store.ReadIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, index.Keys())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreReadIndexMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.ReadIndex(context.Background())
	assert.ErrorIs(t, err, trend.ErrNotFound)
}

func TestFileStoreFindTrends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, testDocument("Bitcoin", 25, trend.PlatformCoinGecko)))
	require.NoError(t, store.Save(ctx, testDocument("AI", 90, trend.PlatformGoogle, trend.PlatformX)))
	require.NoError(t, store.Save(ctx, testDocument("Memes", 90, trend.PlatformTikTok, trend.PlatformX)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	docs, err := store.FindTrends(ctx, trend.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"ai", "memes", "bitcoin"}, []string{docs[0].Key, docs[1].Key, docs[2].Key})

	docs, err = store.FindTrends(ctx, trend.Filter{Platform: trend.PlatformX, Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ai", docs[0].Key)

	docs, err = store.FindTrends(ctx, trend.Filter{MinScore: 50, Lifecycle: trend.LifecycleNew, Platform: trend.PlatformTikTok})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "memes", docs[0].Key)
}

func TestFileStoreIndexKeyDoesNotCollideWithIndexFile(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc := testDocument("#INDEX", 70, trend.PlatformGoogle, trend.PlatformX)
	require.Equal(t, "index", doc.Key)
	require.NoError(t, store.Save(ctx, doc))
	require.NoError(t, store.WriteIndex(ctx, trend.NewIndex([]string{"index"}, time.Now())))

	got, err := store.Get(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", got.Key)
	assert.Equal(t, 70, got.SignalScore)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index"}, keys)

	index, err := store.ReadIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index"}, index.Keys())
}

func TestFileStoreRejectsUnnormalizedKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "_index")
	assert.ErrorIs(t, err, trend.ErrNotFound)

	_, err = store.Get(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, trend.ErrNotFound)

	assert.Error(t, store.Save(ctx, trend.Document{Key: "Not Normal"}))
	assert.Error(t, store.Save(ctx, trend.Document{}))
}
