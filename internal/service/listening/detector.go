// internal/service/listening/detector.go

package listening

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trendradar/internal/domain/trend"
)

// TrendDetectorConfig contains configuration for the trend detector
type TrendDetectorConfig struct {
	HistoryLimit            int
	MaxConcurrentCollectors int
	ScanInterval            time.Duration
}

// TrendDetector implements the trend.Detector interface
type TrendDetector struct {
	collectors []trend.Collector
	analyzer   *Analyzer
	generator  trend.ContentGenerator
	images     trend.ImageFinder
	store      trend.Store
	publisher  trend.Publisher
	config     TrendDetectorConfig
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTrendDetector creates a new trend detector. Collectors are merged in the given order.
func NewTrendDetector(
	collectors []trend.Collector,
	analyzer *Analyzer,
	generator trend.ContentGenerator,
	store trend.Store,
	publisher trend.Publisher,
	config TrendDetectorConfig,
	logger zerolog.Logger,
) *TrendDetector {
	if config.MaxConcurrentCollectors <= 0 {
		config.MaxConcurrentCollectors = 1
	}
	return &TrendDetector{
		collectors: collectors,
		analyzer:   analyzer,
		generator:  generator,
		store:      store,
		publisher:  publisher,
		config:     config,
		logger:     logger.With().Str("component", "detector").Logger(),
		now:        time.Now,
	}
}

// UseImageFinder attaches a photo to every persisted trend that does not have one yet
func (td *TrendDetector) UseImageFinder(images trend.ImageFinder) {
	td.images = images
}

// Run performs one collect, aggregate and persist pass
func (td *TrendDetector) Run(ctx context.Context) (trend.RunSummary, error) {
	summary := trend.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: td.now().UTC(),
	}
	logger := td.logger.With().Str("run_id", summary.RunID).Logger()
	logger.Info().Int("collectors", len(td.collectors)).Msg("Starting trend run")

	sources := td.collect(ctx, logger)
	for _, s := range sources {
		summary.Collected += s.Len()
	}

	scored, stats := td.analyzer.Aggregate(sources...)
	summary.Merged = stats.Merged
	summary.Qualified = stats.Qualified
	summary.Grouped = stats.Grouped

	selected := td.analyzer.Select(scored)
	summary.Selected = len(selected)
	logger.Info().
		Int("collected", summary.Collected).
		Int("merged", summary.Merged).
		Int("qualified", summary.Qualified).
		Int("selected", summary.Selected).
		Msg("Aggregated trends")

	for _, r := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		doc := td.finalize(ctx, logger, r)
		if err := td.store.Save(ctx, doc); err != nil {
			logger.Error().Err(err).Str("key", doc.Key).Msg("Failed to save trend")
			summary.Failed++
			continue
		}
		summary.Persisted++

		if err := td.publisher.PublishTrend(ctx, summary.RunID, doc); err != nil {
			logger.Warn().Err(err).Str("key", doc.Key).Msg("Failed to publish trend event")
		}
	}

	keys, err := td.store.Keys(ctx)
	if err != nil {
		return summary, fmt.Errorf("list stored trends: %w", err)
	}
	if err := td.store.WriteIndex(ctx, trend.NewIndex(keys, td.now())); err != nil {
		return summary, fmt.Errorf("write index: %w", err)
	}
	summary.Indexed = len(keys)
	summary.FinishedAt = td.now().UTC()

	if err := td.publisher.PublishRun(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish run summary")
	}

	logger.Info().
		Int("persisted", summary.Persisted).
		Int("failed", summary.Failed).
		Int("indexed", summary.Indexed).
		Dur("took", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Trend run complete")
	return summary, nil
}

// Start runs detection every ScanInterval until ctx is cancelled.
// A failed run is logged and the next tick tries again.
func (td *TrendDetector) Start(ctx context.Context) error {
	if td.config.ScanInterval <= 0 {
		return errors.New("scan interval must be positive")
	}

	if _, err := td.Run(ctx); err != nil {
		td.logger.Error().Err(err).Msg("Trend run failed")
	}

	ticker := time.NewTicker(td.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := td.Run(ctx); err != nil {
				td.logger.Error().Err(err).Msg("Trend run failed")
			}
		}
	}
}

// collect runs every collector with bounded concurrency. Results keep collector order,
// and a failing collector contributes whatever partial set it returned.
func (td *TrendDetector) collect(ctx context.Context, logger zerolog.Logger) []*trend.Set {
	results := make([]*trend.Set, len(td.collectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(td.config.MaxConcurrentCollectors)

	for i, c := range td.collectors {
		i, c := i, c
		g.Go(func() error {
			start := time.Now()
			set, err := c.Collect(gctx)
			if err != nil {
				logger.Warn().Err(err).Str("collector", c.Name()).Int("partial", set.Len()).Msg("Collector failed")
			} else {
				logger.Debug().Str("collector", c.Name()).Int("trends", set.Len()).Dur("took", time.Since(start)).Msg("Collector done")
			}
			if set == nil {
				set = trend.NewSet()
			}
			results[i] = set
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// finalize attaches content and the persisted history to a selected record
func (td *TrendDetector) finalize(ctx context.Context, logger zerolog.Logger, r *trend.Record) trend.Document {
	platforms := r.PlatformList()
	news, err := td.generator.Generate(ctx, trend.ContentRequest{
		Name:      r.DisplayName(),
		Platforms: platforms,
		Metrics:   r.Metrics,
		Related:   r.Related,
	})
	if err != nil {
		logger.Debug().Err(err).Str("key", r.Key).Msg("Using fallback content")
		news = trend.FallbackNews(r.DisplayName(), platforms)
	}

	doc := trend.NewDocument(r, news, td.now())

	var prev []trend.Snapshot
	existing, err := td.store.Get(ctx, r.Key)
	switch {
	case err == nil:
		prev = existing.History
		doc.Image = existing.Image
	case errors.Is(err, trend.ErrNotFound):
	default:
		logger.Warn().Err(err).Str("key", r.Key).Msg("Unreadable stored trend, starting fresh history")
	}
	doc.History = AppendHistory(prev, doc.History[0], td.config.HistoryLimit)

	if doc.Image == nil && td.images != nil {
		td.attachImage(ctx, logger, &doc)
	}

	return doc
}

// attachImage looks up a photo for doc. A failed lookup leaves the trend without one
// and the next run tries again.
func (td *TrendDetector) attachImage(ctx context.Context, logger zerolog.Logger, doc *trend.Document) {
	query := trend.ImageQuery(*doc)
	img, err := td.images.FindImage(ctx, query)
	if err != nil {
		if errors.Is(err, trend.ErrNoImage) {
			logger.Debug().Str("key", doc.Key).Str("query", query).Msg("No image found")
		} else {
			logger.Warn().Err(err).Str("key", doc.Key).Msg("Image lookup failed")
		}
		return
	}
	doc.Image = img
}
