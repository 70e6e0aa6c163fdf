// internal/seed/seed.go
//
// Synthetic data for the sites and site_url_slug tables.
//
/*
Context
--------
`Run` inserts Options.Sites sites, then Options.Slugs slugs.  Parents go
first because every slug must reference a site id returned by the site
insert.  Each slug picks its site uniformly at random from those ids.

Rows are written in batches of Options.BatchSize, capped at MaxBatchSize.
The first failing batch aborts the run; earlier batches stay committed.  Repeated runs append new
rows with fresh ids.

Field values are deterministic per sequence number:

	uucode          site-<i>
	title           Site <i>
	description     Description for site <i>
	type            blog
	hero_image_url  https://example.com/hero-image-<i>.jpg
	tags            ["tag1","tag2","tag3"]
	address         123 Main St, Site <i>
	url_slug        url-slug-<i>

Only the slug → site assignment is random.  A non-zero RandSeed makes it
reproducible.
*/
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/sitequery/internal/metrics"
	"github.com/yanizio/sitequery/internal/schema"
	"github.com/yanizio/sitequery/internal/site"
)

// Default counts used when the caller does not override them.
const (
	DefaultSites     = 100
	DefaultSlugs     = 1000
	DefaultBatchSize = 500
)

// MaxBatchSize keeps the seven-column site insert under the 65535 bind
// parameter limit shared by postgres and mysql.
const MaxBatchSize = 9000

// ErrNoSites is returned when slugs are requested without any site to
// attach them to.
var ErrNoSites = errors.New("seed: slugs need at least one site")

// Store is the write side of site.Repository.
type Store interface {
	InsertSites(ctx context.Context, sites []site.Site) ([]int64, error)
	InsertURLSlugs(ctx context.Context, slugs []site.URLSlug) (int64, error)
}

// Options controls one seeding run.  RandSeed 0 picks a random seed.
type Options struct {
	Sites     int
	Slugs     int
	BatchSize int
	RandSeed  uint64
}

// DefaultOptions returns 100 sites, 1000 slugs, batches of 500.
func DefaultOptions() Options {
	return Options{Sites: DefaultSites, Slugs: DefaultSlugs, BatchSize: DefaultBatchSize}
}

// Result reports what a run inserted.
type Result struct {
	SiteIDs  []int64
	Slugs    int64
	RandSeed uint64
}

// Run seeds store.  log may be nil.
func Run(ctx context.Context, store Store, opts Options, log *zap.SugaredLogger) (Result, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	opts.BatchSize = min(opts.BatchSize, MaxBatchSize)
	if opts.Slugs > 0 && opts.Sites <= 0 {
		return Result{}, ErrNoSites
	}
	if opts.RandSeed == 0 {
		opts.RandSeed = rand.Uint64()
	}
	res := Result{RandSeed: opts.RandSeed}

	log.Infow("seeding", "sites", opts.Sites, "slugs", opts.Slugs,
		"batch_size", opts.BatchSize, "rand_seed", opts.RandSeed)

	sites := Sites(opts.Sites)
	for start := 0; start < len(sites); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(sites))
		ids, err := store.InsertSites(ctx, sites[start:end])
		if err != nil {
			return res, fmt.Errorf("seed sites %d-%d: %w", start, end-1, err)
		}
		res.SiteIDs = append(res.SiteIDs, ids...)
		metrics.SeedRowsTotal.WithLabelValues(schema.Sites.Name).Add(float64(len(ids)))
	}
	log.Debugw("sites inserted", "count", len(res.SiteIDs))

	rng := rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed^0x9e3779b97f4a7c15))
	slugs := Slugs(opts.Slugs, res.SiteIDs, rng)
	for start := 0; start < len(slugs); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(slugs))
		n, err := store.InsertURLSlugs(ctx, slugs[start:end])
		if err != nil {
			return res, fmt.Errorf("seed url slugs %d-%d: %w", start, end-1, err)
		}
		res.Slugs += n
		metrics.SeedRowsTotal.WithLabelValues(schema.SiteURLSlug.Name).Add(float64(n))
	}

	log.Infow("seed complete", "sites", len(res.SiteIDs), "slugs", res.Slugs)
	return res, nil
}

// Sites builds n synthetic sites numbered 0..n-1.
func Sites(n int) []site.Site {
	out := make([]site.Site, n)
	for i := range n {
		s := strconv.Itoa(i)
		out[i] = site.Site{
			UUCode:       "site-" + s,
			Title:        ptr("Site " + s),
			Description:  ptr("Description for site " + s),
			Type:         ptr("blog"),
			HeroImageURL: ptr("https://example.com/hero-image-" + s + ".jpg"),
			Tags:         site.Tags{"tag1", "tag2", "tag3"},
			Address:      ptr("123 Main St, Site " + s),
		}
	}
	return out
}

// Slugs builds n synthetic slugs, each pointing at a site id drawn
// uniformly from siteIDs.  It returns nil when siteIDs is empty.
func Slugs(n int, siteIDs []int64, rng *rand.Rand) []site.URLSlug {
	if len(siteIDs) == 0 {
		return nil
	}
	out := make([]site.URLSlug, n)
	for i := range n {
		out[i] = site.URLSlug{
			SiteID:  siteIDs[rng.IntN(len(siteIDs))],
			URLSlug: ptr(site.MakeSlug("url slug " + strconv.Itoa(i))),
		}
	}
	return out
}

func ptr(s string) *string { return &s }
