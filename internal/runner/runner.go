// internal/runner/runner.go
//
// Sequential driver for the seed and both fetch strategies.
//
/*
Context
--------
`Run` performs, in this fixed order:

  1. Optional seeding (internal/seed).
  2. Strategy A, join-and-flatten  (`SQL with joins`).
  3. Strategy B, aggregate-and-nest (`SQL with json aggregation`).

For each strategy it prints the label, the SQL text, and the line
`Count of rows returned: <N>` to Out.  Every step blocks until the round
trip completes; the first error aborts the remaining steps.

With Options.Verify the flat rows are re-nested and compared with the
nested rows.  Both must describe the same sites with the same slug ids.

Instrumentation
---------------
  - INFO  per strategy with row count and duration.
  - Prometheus: query_duration_seconds, query_rows, query_errors_total.
*/
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitequery/internal/metrics"
	"github.com/yanizio/sitequery/internal/query"
	"github.com/yanizio/sitequery/internal/seed"
	"github.com/yanizio/sitequery/internal/site"
)

// Strategy labels used in metrics and logs.
const (
	StrategyFlat   = "flat_join"
	StrategyNested = "nested_aggregate"
)

// Console labels printed above each query.
const (
	LabelFlat   = "SQL with joins"
	LabelNested = "SQL with json aggregation"
)

// ErrMismatch is returned by verification when the strategies disagree.
var ErrMismatch = errors.New("fetch strategies returned different results")

// Repository is what the runner needs from site.Repository.
type Repository interface {
	seed.Store
	FlatQuery() (query.Query, error)
	NestedQuery() (query.Query, error)
	FetchFlat(ctx context.Context) ([]site.FlatRow, error)
	FetchNested(ctx context.Context) ([]site.NestedRow, error)
}

// Options selects the optional steps of a run.
type Options struct {
	Seed   bool
	SeedOp seed.Options
	Verify bool
}

// Report summarises a completed run.
type Report struct {
	Seed       *seed.Result
	FlatRows   int
	NestedRows int
}

// Runner executes runs against one repository.
type Runner struct {
	repo Repository
	out  io.Writer
	log  *zap.SugaredLogger
	now  func() time.Time
}

// New returns a Runner printing to out.  log may be nil.
func New(repo Repository, out io.Writer, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{repo: repo, out: out, log: log, now: time.Now}
}

// Run performs one full pass.  See the file header for the step order.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	var rep Report

	if opts.Seed {
		res, err := seed.Run(ctx, r.repo, opts.SeedOp, r.log)
		if err != nil {
			return rep, err
		}
		rep.Seed = &res
	}

	flat, err := r.Flat(ctx)
	if err != nil {
		return rep, err
	}
	rep.FlatRows = len(flat)

	nested, err := r.Nested(ctx)
	if err != nil {
		return rep, err
	}
	rep.NestedRows = len(nested)

	if opts.Verify {
		if err := Compare(site.Nest(flat), site.FromNested(nested)); err != nil {
			return rep, err
		}
		r.log.Infow("strategies agree", "sites", len(nested), "flat_rows", len(flat))
	}
	return rep, nil
}

// Flat prints and executes Strategy A.
func (r *Runner) Flat(ctx context.Context) ([]site.FlatRow, error) {
	q, err := r.repo.FlatQuery()
	if err != nil {
		return nil, err
	}
	return execute(ctx, r, StrategyFlat, LabelFlat, q, r.repo.FetchFlat)
}

// Nested prints and executes Strategy B.
func (r *Runner) Nested(ctx context.Context) ([]site.NestedRow, error) {
	q, err := r.repo.NestedQuery()
	if err != nil {
		return nil, err
	}
	return execute(ctx, r, StrategyNested, LabelNested, q, r.repo.FetchNested)
}

func execute[T any](ctx context.Context, r *Runner, strategy, label string, q query.Query,
	fetch func(context.Context) ([]T, error)) ([]T, error) {

	if _, err := fmt.Fprintf(r.out, "%s\n%s\n", label, q.SQL); err != nil {
		return nil, err
	}

	start := r.now()
	rows, err := fetch(ctx)
	elapsed := r.now().Sub(start)
	if err != nil {
		metrics.QueryErrorsTotal.WithLabelValues(strategy).Inc()
		r.log.Errorw("fetch failed", "strategy", strategy, "err", err)
		return nil, err
	}

	metrics.QueryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	metrics.QueryRows.WithLabelValues(strategy).Set(float64(len(rows)))
	r.log.Infow("fetch complete", "strategy", strategy, "rows", len(rows), "duration", elapsed)

	if _, err := fmt.Fprintf(r.out, "Count of rows returned: %d\n", len(rows)); err != nil {
		return nil, err
	}
	return rows, nil
}

// Compare checks that two object graphs hold the same sites and, per
// site, the same set of slug ids.  Order is ignored.
func Compare(flat, nested []site.SiteWithSlugs) error {
	a, b := slugIDsBySite(flat), slugIDsBySite(nested)
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d sites from join, %d from aggregate", ErrMismatch, len(a), len(b))
	}
	for id, want := range a {
		got, ok := b[id]
		if !ok {
			return fmt.Errorf("%w: site %d missing from aggregate", ErrMismatch, id)
		}
		if !slices.Equal(want, got) {
			return fmt.Errorf("%w: site %d has slugs %v from join, %v from aggregate", ErrMismatch, id, want, got)
		}
	}
	return nil
}

func slugIDsBySite(graph []site.SiteWithSlugs) map[int64][]int64 {
	out := make(map[int64][]int64, len(graph))
	for _, s := range graph {
		ids := make([]int64, 0, len(s.Slugs))
		for _, slug := range s.Slugs {
			ids = append(ids, slug.ID)
		}
		slices.Sort(ids)
		out[s.ID] = ids
	}
	return out
}
