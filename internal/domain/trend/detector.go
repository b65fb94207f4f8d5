// internal/domain/trend/detector.go

package trend

import (
	"context"
	"time"
)

// Detector defines the interface for a trend detection run
type Detector interface {
	// Run collects, aggregates, and persists trends once
	Run(ctx context.Context) (RunSummary, error)
}

// Collector defines a per-platform trend source.
// Collect returns whatever it managed to gather, even alongside an error,
// so a failing source degrades to a partial or empty contribution.
type Collector interface {
	// Name returns the collector name used in logs
	Name() string

	// Collect fetches the current trends of this source
	Collect(ctx context.Context) (*Set, error)
}

// ContentRequest describes a trend for the content generator
type ContentRequest struct {
	Name      string
	Platforms []Platform
	Metrics   Metrics
	Related   []string
}

// ContentGenerator turns a scored trend into editorial content
type ContentGenerator interface {
	// Generate returns content or an error; callers fall back to FallbackNews on error
	Generate(ctx context.Context, req ContentRequest) (News, error)
}

// Store defines persistence for finalized trend documents
type Store interface {
	// Get returns the document stored under key, or ErrNotFound
	Get(ctx context.Context, key string) (*Document, error)

	// Save writes a document under its key, replacing any previous version
	Save(ctx context.Context, doc Document) error

	// Keys lists every persisted key
	Keys(ctx context.Context) ([]string, error)

	// WriteIndex replaces the index artifact
	WriteIndex(ctx context.Context, index Index) error
}

// Publisher announces detected trends to other services
type Publisher interface {
	PublishTrend(ctx context.Context, runID string, doc Document) error
	PublishRun(ctx context.Context, summary RunSummary) error
}

// RunSummary reports the counts of one detection run
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Collected  int       `json:"collected"`
	Merged     int       `json:"merged"`
	Qualified  int       `json:"qualified"`
	Grouped    int       `json:"grouped"`
	Selected   int       `json:"selected"`
	Persisted  int       `json:"persisted"`
	Failed     int       `json:"failed"`
	Indexed    int       `json:"indexed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
