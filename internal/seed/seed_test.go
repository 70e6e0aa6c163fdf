package seed

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitequery/internal/metrics"
	"github.com/yanizio/sitequery/internal/site"
)

// memStore is an in-memory Store that assigns sequential ids and checks
// the foreign key the way the database would.
type memStore struct {
	nextID      int64
	sites       map[int64]site.Site
	slugs       []site.URLSlug
	siteBatches int
	slugBatches int
	failSlugs   error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, sites: make(map[int64]site.Site)}
}

func (m *memStore) InsertSites(_ context.Context, sites []site.Site) ([]int64, error) {
	m.siteBatches++
	ids := make([]int64, len(sites))
	for i, s := range sites {
		s.ID = m.nextID
		m.sites[s.ID] = s
		ids[i] = s.ID
		m.nextID++
	}
	return ids, nil
}

func (m *memStore) InsertURLSlugs(_ context.Context, slugs []site.URLSlug) (int64, error) {
	m.slugBatches++
	if m.failSlugs != nil {
		return 0, m.failSlugs
	}
	for _, s := range slugs {
		if _, ok := m.sites[s.SiteID]; !ok {
			return 0, errors.New("foreign key violation")
		}
	}
	m.slugs = append(m.slugs, slugs...)
	return int64(len(slugs)), nil
}

func TestRun_DefaultCounts(t *testing.T) {
	store := newMemStore()
	before := testutil.ToFloat64(metrics.SeedRowsTotal.WithLabelValues("site_url_slug"))

	res, err := Run(context.Background(), store, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Len(t, res.SiteIDs, 100)
	assert.Equal(t, int64(1000), res.Slugs)
	assert.NotZero(t, res.RandSeed)
	assert.Len(t, store.sites, 100)
	assert.Len(t, store.slugs, 1000)
	assert.Equal(t, 1, store.siteBatches)
	assert.Equal(t, 2, store.slugBatches)

	after := testutil.ToFloat64(metrics.SeedRowsTotal.WithLabelValues("site_url_slug"))
	assert.Equal(t, float64(1000), after-before)
}

func TestRun_ReferentialIntegrity(t *testing.T) {
	store := newMemStore()
	_, err := Run(context.Background(), store, Options{Sites: 7, Slugs: 300, BatchSize: 50, RandSeed: 1}, nil)
	require.NoError(t, err)

	for _, s := range store.slugs {
		_, ok := store.sites[s.SiteID]
		assert.True(t, ok, "slug %s points at missing site %d", *s.URLSlug, s.SiteID)
	}
}

func TestRun_NotIdempotent(t *testing.T) {
	store := newMemStore()
	opts := Options{Sites: 10, Slugs: 40, BatchSize: 8, RandSeed: 3}

	first, err := Run(context.Background(), store, opts, nil)
	require.NoError(t, err)
	second, err := Run(context.Background(), store, opts, nil)
	require.NoError(t, err)

	assert.Len(t, store.sites, 20)
	assert.Len(t, store.slugs, 80)
	assert.NotEqual(t, first.SiteIDs, second.SiteIDs, "second run must get fresh ids")

	// the second run only references its own sites
	for _, s := range store.slugs[40:] {
		assert.Contains(t, second.SiteIDs, s.SiteID)
	}
}

func TestRun_Reproducible(t *testing.T) {
	opts := Options{Sites: 5, Slugs: 50, RandSeed: 42}

	a, b := newMemStore(), newMemStore()
	_, err := Run(context.Background(), a, opts, nil)
	require.NoError(t, err)
	_, err = Run(context.Background(), b, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, a.slugs, b.slugs)
}

func TestRun_SlugFailureAborts(t *testing.T) {
	store := newMemStore()
	boom := errors.New("connection reset")
	store.failSlugs = boom

	res, err := Run(context.Background(), store, Options{Sites: 3, Slugs: 30, BatchSize: 10}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, res.SiteIDs, 3, "site batches stay committed")
	assert.Equal(t, 1, store.slugBatches, "no batch after the failing one")
}

func TestRun_BatchSizeCapped(t *testing.T) {
	store := newMemStore()
	_, err := Run(context.Background(), store, Options{Sites: MaxBatchSize + 1, BatchSize: 20000, RandSeed: 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.siteBatches)
	assert.Len(t, store.sites, MaxBatchSize+1)
}

func TestRun_SlugsWithoutSites(t *testing.T) {
	_, err := Run(context.Background(), newMemStore(), Options{Sites: 0, Slugs: 1}, nil)
	assert.ErrorIs(t, err, ErrNoSites)
}

func TestSitesFields(t *testing.T) {
	sites := Sites(2)
	require.Len(t, sites, 2)

	s := sites[1]
	assert.Equal(t, "site-1", s.UUCode)
	assert.Equal(t, "Site 1", *s.Title)
	assert.Equal(t, "Description for site 1", *s.Description)
	assert.Equal(t, "blog", *s.Type)
	assert.Equal(t, "https://example.com/hero-image-1.jpg", *s.HeroImageURL)
	assert.Equal(t, site.Tags{"tag1", "tag2", "tag3"}, s.Tags)
	assert.Equal(t, "123 Main St, Site 1", *s.Address)
}

func TestSlugs(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	slugs := Slugs(3, []int64{7, 8}, rng)
	require.Len(t, slugs, 3)
	assert.Equal(t, "url-slug-2", *slugs[2].URLSlug)
	for _, s := range slugs {
		assert.Contains(t, []int64{7, 8}, s.SiteID)
	}

	assert.Nil(t, Slugs(3, nil, rng))
}
