package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
)

type fakeReader struct {
	docs      map[string]trend.Document
	err       error
	lastQuery trend.Filter
}

func (f *fakeReader) Get(ctx context.Context, key string) (*trend.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[key]
	if !ok {
		return nil, trend.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeReader) FindTrends(ctx context.Context, filter trend.Filter) ([]trend.Document, error) {
	f.lastQuery = filter
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]trend.Document, 0, len(f.docs))
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	return filter.Apply(docs), nil
}

type fakeSubscriber struct {
	mu         sync.Mutex
	subject    string
	handler    func([]byte)
	subscribed chan struct{}
	removed    chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		subscribed: make(chan struct{}, 1),
		removed:    make(chan struct{}, 1),
	}
}

func (f *fakeSubscriber) Subscribe(subject string, handler func([]byte)) (func() error, error) {
	f.mu.Lock()
	f.subject = subject
	f.handler = handler
	f.mu.Unlock()
	f.subscribed <- struct{}{}
	return func() error {
		f.removed <- struct{}{}
		return nil
	}, nil
}

func (f *fakeSubscriber) publish(data []byte) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(data)
}

func testDocs() map[string]trend.Document {
	return map[string]trend.Document{
		"bitcoin": {
			Trend: "Bitcoin", Key: "bitcoin", SignalScore: 80, Lifecycle: trend.LifecyclePeak,
			Category: "finance", Platforms: map[trend.Platform]bool{trend.PlatformCoinGecko: true, trend.PlatformX: true},
			History: []trend.Snapshot{{SignalScore: 70}, {SignalScore: 80}},
		},
		"taylorswift": {
			Trend: "Taylor Swift", Key: "taylorswift", SignalScore: 55, Lifecycle: trend.LifecycleRising,
			Category: "entertainment", Platforms: map[trend.Platform]bool{trend.PlatformGoogle: true},
		},
	}
}

func newTestServer(t *testing.T, reader *fakeReader, sub *fakeSubscriber) *httptest.Server {
	t.Helper()
	cfg := config.ServerConfig{CorsOrigins: []string{"*"}}

	var s *Server
	if sub != nil {
		s = NewServer(cfg, reader, sub, "trend.detected", zerolog.Nop())
	} else {
		s = NewServer(cfg, reader, nil, "", zerolog.Nop())
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeReader{}, nil)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTrends(t *testing.T) {
	reader := &fakeReader{docs: testDocs()}
	ts := newTestServer(t, reader, nil)

	var docs []trend.Document
	code := getJSON(t, ts.URL+"/api/v1/trends", &docs)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, docs, 2)
	assert.Equal(t, "bitcoin", docs[0].Key)
	assert.Equal(t, 50, reader.lastQuery.Limit)
}

func TestListTrendsFilters(t *testing.T) {
	reader := &fakeReader{docs: testDocs()}
	ts := newTestServer(t, reader, nil)

	var docs []trend.Document
	code := getJSON(t, ts.URL+"/api/v1/trends?platform=google&limit=500&min_score=10", &docs)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, docs, 1)
	assert.Equal(t, "taylorswift", docs[0].Key)
	assert.Equal(t, 200, reader.lastQuery.Limit)
	assert.Equal(t, 10, reader.lastQuery.MinScore)
	assert.Equal(t, trend.PlatformGoogle, reader.lastQuery.Platform)
}

func TestListTrendsEmptyIsArray(t *testing.T) {
	ts := newTestServer(t, &fakeReader{}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/trends")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "[]", string(raw))
}

func TestListTrendsRejectsBadQuery(t *testing.T) {
	ts := newTestServer(t, &fakeReader{}, nil)

	for _, q := range []string{"min_score=abc", "min_score=101", "limit=0", "lifecycle=viral"} {
		t.Run(q, func(t *testing.T) {
			var body map[string]string
			code := getJSON(t, ts.URL+"/api/v1/trends?"+q, &body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestListTrendsStoreError(t *testing.T) {
	ts := newTestServer(t, &fakeReader{err: errors.New("disk on fire")}, nil)

	var body map[string]string
	code := getJSON(t, ts.URL+"/api/v1/trends", &body)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to get trends", body["error"])
}

func TestGetTrendNormalizesKey(t *testing.T) {
	ts := newTestServer(t, &fakeReader{docs: testDocs()}, nil)

	var doc trend.Document
	code := getJSON(t, ts.URL+"/api/v1/trends/Taylor-Swift", &doc)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Taylor Swift", doc.Trend)
}

func TestGetTrendNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeReader{docs: testDocs()}, nil)

	code := getJSON(t, ts.URL+"/api/v1/trends/dogecoin", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetHistory(t *testing.T) {
	ts := newTestServer(t, &fakeReader{docs: testDocs()}, nil)

	var body struct {
		Key     string           `json:"key"`
		Trend   string           `json:"trend"`
		History []trend.Snapshot `json:"history"`
	}
	code := getJSON(t, ts.URL+"/api/v1/trends/bitcoin/history", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bitcoin", body.Key)
	require.Len(t, body.History, 2)
	assert.Equal(t, 80, body.History[1].SignalScore)
}

func TestWebSocketRouteRequiresSubscriber(t *testing.T) {
	ts := newTestServer(t, &fakeReader{}, nil)

	resp, err := http.Get(ts.URL + "/ws/trends")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketRelaysEvents(t *testing.T) {
	sub := newFakeSubscriber()
	ts := newTestServer(t, &fakeReader{}, sub)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/trends"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	select {
	case <-sub.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never subscribed")
	}
	assert.Equal(t, "trend.detected", sub.subject)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome map[string]interface{}
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "welcome", welcome["type"])

	sub.publish([]byte(`{"key":"bitcoin"}`))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"bitcoin"}`, string(msg))

	require.NoError(t, conn.Close())

	select {
	case <-sub.removed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never unsubscribed")
	}
}
