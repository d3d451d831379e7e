// Package scan drives every entry analyzer over every entry of the
// archives found under an input path and aggregates the results.
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/fs"
	"github.com/mabhi256/migration-analyzer/internal/render"
)

// archiveAnalyzer names failures to open a nested archive.
const archiveAnalyzer = "archive"

type Options struct {
	// Concurrency bounds the entries analyzed at once. Zero means one per CPU.
	Concurrency int
	// FailFast stops the scan at the first failed entry.
	FailFast bool
	Excluder *fs.Excluder
	Metrics  *Metrics
}

// Executor applies a fixed set of analyzers to archives.
type Executor struct {
	analyzers   []analyze.EntryAnalyzer
	concurrency int
	failFast    bool
	excluder    *fs.Excluder
	metrics     *Metrics
	logger      zerolog.Logger
}

func NewExecutor(analyzers []analyze.EntryAnalyzer, opts Options, logger zerolog.Logger) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Executor{
		analyzers:   analyzers,
		concurrency: opts.Concurrency,
		failFast:    opts.FailFast,
		excluder:    opts.Excluder,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

func (e *Executor) Metrics() *Metrics {
	return e.metrics
}

// Scan analyzes every archive under inputPath.
func (e *Executor) Scan(ctx context.Context, inputPath string) (*render.Report, error) {
	names := make([]string, len(e.analyzers))
	for i, a := range e.analyzers {
		names[i] = a.Name()
	}
	e.logger.Info().Str("input", inputPath).Strs("analyzers", names).Msg("starting scan")

	paths, err := fs.Discover(inputPath, e.excluder)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		e.logger.Warn().Str("input", inputPath).Msg("no archives found")
	}

	start := time.Now()
	report := &render.Report{
		ID:          uuid.NewString(),
		InputPath:   inputPath,
		GeneratedAt: start,
	}

	for _, path := range paths {
		err := fs.Walk(path, displayName(inputPath, path), e.excluder, func(archive *fs.Archive) error {
			archiveReport, err := e.ScanArchive(ctx, archive)
			report.Archives = append(report.Archives, archiveReport)
			return err
		})
		if err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
	}
	report.Elapsed = time.Since(start)

	e.logger.Info().
		Int("archives", len(report.Archives)).
		Int("entries", report.TotalEntries()).
		Int("facts", report.TotalFacts()).
		Int("failures", report.TotalFailures()).
		Dur("elapsed", report.Elapsed).
		Msg("scan complete")
	return report, nil
}

// displayName is path relative to the scanned directory, or its base name
// when the input is the archive itself.
func displayName(inputPath, path string) string {
	if filepath.Clean(inputPath) == filepath.Clean(path) {
		return filepath.Base(path)
	}
	if rel, err := filepath.Rel(inputPath, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// ScanArchive analyzes the entries of one archive in parallel. The
// returned report holds whatever was gathered, even when err is set.
func (e *Executor) ScanArchive(ctx context.Context, archive *fs.Archive) (render.ArchiveReport, error) {
	agg := NewAggregator()
	e.metrics.Archives.Inc()

	if archive.Err != nil {
		e.logger.Warn().Err(archive.Err).Str("archive", archive.Name).Msg("failed to open nested archive")
		e.metrics.Failures.WithLabelValues(archiveAnalyzer).Inc()
		agg.AddFailure(archiveAnalyzer, archive.Name, archive.Err)
		if e.failFast {
			return agg.Report(archive.Name), fmt.Errorf("failed to open archive '%s': %w", archive.Name, archive.Err)
		}
		return agg.Report(archive.Name), nil
	}

	e.logger.Info().Str("archive", archive.Name).Int("entries", len(archive.Entries)).Msg("scanning archive")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, entry := range archive.Entries {
		if gctx.Err() != nil {
			break
		}
		if entry.IsDirectory() {
			continue
		}
		if e.excluder.Excluded(entry.Name()) {
			e.logger.Debug().Str("entry", entry.Name()).Msg("excluded")
			continue
		}
		g.Go(func() error {
			return e.analyzeEntry(gctx, agg, entry)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return agg.Report(archive.Name), err
}

func (e *Executor) analyzeEntry(ctx context.Context, agg *Aggregator, entry analyze.FileSystemEntry) error {
	start := time.Now()
	defer func() {
		e.metrics.Duration.Observe(time.Since(start).Seconds())
	}()

	agg.CountEntry()
	e.metrics.Entries.Inc()

	for _, analyzer := range e.analyzers {
		if err := ctx.Err(); err != nil {
			return err
		}

		results, err := analyzer.Analyze(entry)
		if err != nil {
			e.logger.Warn().Err(err).Str("entry", entry.Name()).Str("analyzer", analyzer.Name()).Msg("analysis failed")
			e.metrics.Failures.WithLabelValues(analyzer.Name()).Inc()
			agg.AddFailure(analyzer.Name(), entry.Name(), err)
			if e.failFast {
				return err
			}
			continue
		}

		for fact := range results {
			e.metrics.Facts.WithLabelValues(fact.Category()).Inc()
		}
		agg.Add(entry.Name(), results)
	}
	return nil
}
