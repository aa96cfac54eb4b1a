// Package pipeline orchestrates dashboard payload builds: fetch both text
// sources, parse, aggregate, and cache the result for the HTTP boundary.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/microseq-dashboard/internal/domain"
	"github.com/couchcryptid/microseq-dashboard/internal/observability"
	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

// Fetcher retrieves one raw text source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Service builds the dashboard payload. The dataset fetch is fatal for a
// run; the reference fetch degrades to an empty lookup, which only
// disables the coordinate fallback path.
type Service struct {
	dataset   Fetcher
	reference Fetcher
	opts      domain.Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. Pass a nil reference fetcher when no reference
// source is configured.
func New(dataset, reference Fetcher, opts domain.Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		dataset:   dataset,
		reference: reference,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one build has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no payload built yet")
	}
	return nil
}

// Build fetches both sources concurrently and aggregates the dataset into
// a fresh payload. Each run owns its accumulators; concurrent Build calls
// do not share state.
func (s *Service) Build(ctx context.Context) (*domain.Payload, error) {
	start := time.Now()

	var datasetText, referenceText string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := s.fetch(gctx, "dataset", s.dataset)
		if err != nil {
			return err
		}
		datasetText = string(body)
		return nil
	})
	g.Go(func() error {
		if s.reference == nil {
			return nil
		}
		body, err := s.fetch(gctx, "coords", s.reference)
		if err != nil {
			// Reference loss only disables fallback coordinates.
			s.logger.Warn("reference coordinates unavailable, fallback disabled", "error", err)
			return nil
		}
		referenceText = string(body)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.BuildErrors.Inc()
		return nil, err
	}

	rows := tabular.Parse(datasetText, tabular.Tab)
	coords := domain.BuildReferenceCoords(tabular.Parse(referenceText, tabular.Comma))
	payload := domain.Aggregate(rows, coords, s.opts)

	s.metrics.RowsProcessed.Add(float64(len(rows)))
	s.metrics.LastBuildRows.Set(float64(len(rows)))
	s.metrics.ReferenceLoaded.Set(float64(len(coords)))
	s.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	s.ready.Store(true)

	s.logger.Info("payload built",
		"rows", len(rows),
		"reference_regions", len(coords),
		"coverage_points", len(payload.CoveragePoints),
		"duration", time.Since(start),
	)
	return &payload, nil
}

func (s *Service) fetch(ctx context.Context, name string, f Fetcher) ([]byte, error) {
	start := time.Now()
	body, err := f.Fetch(ctx)
	s.metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	s.metrics.FetchRequests.WithLabelValues(name, "success").Inc()
	return body, nil
}
