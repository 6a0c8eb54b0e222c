package migrate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/snikjou/usagemig/internal/constants"
	"github.com/snikjou/usagemig/internal/store"

	"golang.org/x/sync/errgroup"
)

// Options tunes a Runner. Zero values fall back to the package defaults.
type Options struct {
	BatchSize     int
	Concurrency   int
	SpotCheckSize int
	Discovery     DiscoveryOptions
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = constants.DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = constants.DefaultConcurrency
	}
	if o.SpotCheckSize <= 0 {
		o.SpotCheckSize = constants.DefaultSpotCheckSize
	}
	return o
}

// Result summarizes a run. Updated + Errors always equals the number of
// documents that entered mutation.
type Result struct {
	// Discovered is how many documents matched the discovery predicate.
	Discovered int
	// Pending is how many of those still needed the patch.
	Pending int
	// Updated counts successful upserts.
	Updated int
	// Skipped counts documents already in the target state.
	Skipped int
	// Errors counts per-document mutation failures.
	Errors int
	// SpotCheck is nil when no verification ran (dry run or nothing
	// mutated).
	SpotCheck *SpotCheckResult
}

// Runner executes one migration against a container.
type Runner struct {
	container store.Container
	migration *Migration
	opts      Options
	logger    *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewRunner creates a runner for the given migration.
func NewRunner(c store.Container, m *Migration, opts Options, logger *slog.Logger) *Runner {
	return &Runner{
		container: c,
		migration: m,
		opts:      opts.withDefaults(),
		logger:    logger,
		now:       time.Now,
	}
}

// DryRun performs discovery and decision only. It returns the run counts
// plus a bounded preview of the documents that would be patched; nothing is
// written.
func (r *Runner) DryRun(ctx context.Context) (*Result, []store.Document, error) {
	toMigrate, res, err := r.discoverAndPartition(ctx)
	if err != nil {
		return nil, nil, err
	}

	previewSize := min(constants.DryRunPreviewSize, len(toMigrate))
	preview := make([]store.Document, 0, previewSize)
	for _, doc := range toMigrate[:previewSize] {
		preview = append(preview, doc.Clone())
	}

	return res, preview, nil
}

// Execute performs the full run: discovery, decision, batched mutation,
// and spot-check verification. A fatal discovery error aborts before any
// write; per-document mutation failures are counted and never abort the
// run.
func (r *Runner) Execute(ctx context.Context) (*Result, error) {
	toMigrate, res, err := r.discoverAndPartition(ctx)
	if err != nil {
		return nil, err
	}

	if len(toMigrate) == 0 {
		r.logger.Info("no documents need the patch")
		return res, nil
	}

	// Snapshot the spot-check sample before mutation touches it.
	sampleSize := min(r.opts.SpotCheckSize, len(toMigrate))
	snapshots := make([]store.Document, 0, sampleSize)
	for _, doc := range toMigrate[:sampleSize] {
		snapshots = append(snapshots, doc.Clone())
	}

	res.Updated, res.Errors = r.mutateAll(ctx, toMigrate)

	if len(snapshots) > 0 {
		res.SpotCheck = r.spotCheck(ctx, snapshots)
	}

	return res, nil
}

func (r *Runner) discoverAndPartition(ctx context.Context) ([]store.Document, *Result, error) {
	docs, err := Discover(ctx, r.container, r.migration.Query(), r.opts.Discovery, r.logger)
	if err != nil {
		return nil, nil, err
	}

	toMigrate, alreadyDone := r.migration.Partition(docs)

	r.logger.Info("partitioned discovered documents",
		"pending", len(toMigrate),
		"already_done", len(alreadyDone),
	)

	return toMigrate, &Result{
		Discovered: len(docs),
		Pending:    len(toMigrate),
		Skipped:    len(alreadyDone),
	}, nil
}

// mutateAll applies the patch to every document in fixed-size batches,
// bounding in-flight writes within a batch. Batch N+1 never starts until
// every write of batch N has settled.
func (r *Runner) mutateAll(ctx context.Context, docs []store.Document) (updated, errored int) {
	var updatedCount, errorCount atomic.Int64

	totalBatches := batchCount(len(docs), r.opts.BatchSize)

	for start := 0; start < len(docs); start += r.opts.BatchSize {
		batch := docs[start:min(start+r.opts.BatchSize, len(docs))]

		r.logger.Info("processing batch",
			"batch", start/r.opts.BatchSize+1,
			"total_batches", totalBatches,
			"size", len(batch),
		)

		g := new(errgroup.Group)
		g.SetLimit(r.opts.Concurrency)

		for _, doc := range batch {
			g.Go(func() error {
				if err := r.mutateOne(ctx, doc); err != nil {
					r.logger.Error("failed to update document", "id", doc.ID(), "error", err)
					errorCount.Add(1)
				} else {
					updatedCount.Add(1)
				}
				// A single document's failure never cancels its siblings.
				return nil
			})
		}

		_ = g.Wait()

		r.logger.Info("batch completed", "updated_so_far", updatedCount.Load())
	}

	return int(updatedCount.Load()), int(errorCount.Load())
}

func (r *Runner) mutateOne(ctx context.Context, doc store.Document) error {
	r.migration.ApplyPatch(doc, r.now())
	_, err := r.container.Upsert(ctx, doc)
	return err
}

func batchCount(n, batchSize int) int {
	if n == 0 {
		return 0
	}
	return (n + batchSize - 1) / batchSize
}
