package site

import "time"

// FlatRow is one row of the join-and-flatten strategy: a full site plus the
// columns of at most one slug.  Slug is all-nil for a site without slugs.
type FlatRow struct {
	Site
	Slug NullableSlug `db:"site_url_slug"`
}

// NullableSlug holds the LEFT JOIN side of a FlatRow.
type NullableSlug struct {
	ID        *int64     `db:"site_url_slug_id"`
	SiteID    *int64     `db:"site_id"`
	URLSlug   *string    `db:"url_slug"`
	IsActive  *bool      `db:"is_active"`
	CreatedAt *time.Time `db:"created_at"`
	CreatedBy *int64     `db:"created_by"`
	UpdatedAt *time.Time `db:"updated_at"`
	UpdatedBy *int64     `db:"updated_by"`
}

// Valid reports whether the join matched a slug row.
func (n NullableSlug) Valid() bool { return n.ID != nil }

// Slug converts the joined columns into a URLSlug.  ok is false when the
// join found no slug.
func (n NullableSlug) Slug() (s URLSlug, ok bool) {
	if !n.Valid() {
		return URLSlug{}, false
	}
	s = URLSlug{
		ID:        *n.ID,
		URLSlug:   n.URLSlug,
		CreatedBy: n.CreatedBy,
		UpdatedAt: n.UpdatedAt,
		UpdatedBy: n.UpdatedBy,
	}
	if n.SiteID != nil {
		s.SiteID = *n.SiteID
	}
	if n.IsActive != nil {
		s.IsActive = *n.IsActive
	}
	if n.CreatedAt != nil {
		s.CreatedAt = *n.CreatedAt
	}
	return s, true
}

// NestedRow is one row of the aggregate-and-nest strategy.
type NestedRow struct {
	Site
	Slugs SlugTuples `db:"siteUrlSlugs"`
}

// SiteWithSlugs is the object graph both strategies can be reduced to.
type SiteWithSlugs struct {
	Site
	Slugs []URLSlug
}

// Nest folds flat rows back into one SiteWithSlugs per site.  Sites keep
// the order in which they first appear; slugs keep row order.
func Nest(rows []FlatRow) []SiteWithSlugs {
	out := make([]SiteWithSlugs, 0)
	index := make(map[int64]int)
	for _, r := range rows {
		i, seen := index[r.Site.ID]
		if !seen {
			i = len(out)
			index[r.Site.ID] = i
			out = append(out, SiteWithSlugs{Site: r.Site, Slugs: []URLSlug{}})
		}
		if s, ok := r.Slug.Slug(); ok {
			out[i].Slugs = append(out[i].Slugs, s)
		}
	}
	return out
}

// FromNested converts nested rows into the same graph shape as Nest.
func FromNested(rows []NestedRow) []SiteWithSlugs {
	out := make([]SiteWithSlugs, len(rows))
	for i, r := range rows {
		slugs := []URLSlug(r.Slugs)
		if slugs == nil {
			slugs = []URLSlug{}
		}
		out[i] = SiteWithSlugs{Site: r.Site, Slugs: slugs}
	}
	return out
}
