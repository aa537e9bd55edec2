// Package service provides the analysis pipeline and background job
// management.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lucasvnasc/paginas-semelhantes/internal/analyze"
	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/parser"
	"github.com/lucasvnasc/paginas-semelhantes/internal/report"
)

// AnalysisService runs the full pipeline: CSV ingestion, profile building,
// index construction, parallel matching, sequential resolution, projection.
type AnalysisService struct {
	metrics *metrics.Collector
}

// NewAnalysisService creates an analysis service. The collector may be nil
// when no stats endpoint is wired.
func NewAnalysisService(collector *metrics.Collector) *AnalysisService {
	return &AnalysisService{metrics: collector}
}

// Options configures one analysis run.
type Options struct {
	// Threshold is the qualifying shared-keyword ratio in [0,1].
	Threshold float64
	// MinKeywords is the minimum keyword-set size for comparison sources.
	MinKeywords int
	// Concurrency sets the number of parallel matching workers (default 4).
	Concurrency int
	// Progress, if non-nil, receives matcher progress updates.
	Progress func(done, total int)
}

// Result is the outcome of one analysis run.
type Result struct {
	Groups []report.Group `json:"groups"`

	RowsRead   int           `json:"rows_read"`
	RowsKept   int           `json:"rows_kept"`
	Pages      int           `json:"pages"`
	Keywords   int           `json:"keywords"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
}

// Run executes the pipeline over a Search Console CSV export. Schema and
// configuration errors fail fast with no partial result; an input that
// normalizes to zero pages is not an error and yields an empty group list.
func (s *AnalysisService) Run(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	cfg := analyze.Config{Threshold: opts.Threshold, MinKeywords: opts.MinKeywords}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()

	parseStart := time.Now()
	rows, stats, err := parser.ReadRows(r)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyFile) || errors.Is(err, parser.ErrMissingColumns) {
			return nil, err
		}
		return nil, fmt.Errorf("parse input: %w", err)
	}
	s.record(metrics.OpParse, time.Since(parseStart), int64(stats.RowsRead))

	slog.Info("input normalized",
		"rows_read", stats.RowsRead,
		"rows_kept", stats.RowsKept,
		"duplicates", stats.Duplicates,
		"dropped_urls", stats.DroppedURL)

	profiles := analyze.BuildProfiles(rows)
	index := analyze.BuildIndex(profiles)

	matcher, err := analyze.NewMatcher(profiles, index, cfg)
	if err != nil {
		return nil, err
	}

	matchStart := time.Now()
	matches, err := matcher.MatchAll(ctx, opts.Concurrency, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("match pages: %w", err)
	}
	s.record(metrics.OpMatch, time.Since(matchStart), int64(len(profiles)))

	resolveStart := time.Now()
	groups := analyze.Resolve(profiles, matches)
	s.record(metrics.OpResolve, time.Since(resolveStart), int64(len(groups)))

	projected := report.Project(groups, analyze.ProfileMap(profiles))

	elapsed := time.Since(started)
	s.record(metrics.OpAnalysis, elapsed, int64(len(profiles)))

	slog.Info("analysis complete",
		"pages", len(profiles),
		"keywords", index.Keywords(),
		"groups", len(groups),
		"duration_ms", elapsed.Milliseconds())

	return &Result{
		Groups:     projected,
		RowsRead:   stats.RowsRead,
		RowsKept:   stats.RowsKept,
		Pages:      len(profiles),
		Keywords:   index.Keywords(),
		Duration:   elapsed,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

func (s *AnalysisService) record(op string, d time.Duration, items int64) {
	if s.metrics != nil {
		s.metrics.Record(op, d, items)
	}
}
