// internal/schema/sites.go
//
// `sites` and `site_url_slug` table declarations.
//
// Schema reference
//
//	sites          (site_id PK, uucode, title, description, type,
//	                hero_image_url, is_active, created_at, created_by,
//	                updated_at, updated_by, tags, address)
//	site_url_slug  (site_url_slug_id PK, site_id FK → sites.site_id,
//	                url_slug, is_active, created_at, created_by,
//	                updated_at, updated_by)
//
// Notes
// -----
//   - `sites.created_by` / `sites.updated_by` are BOOLEAN while the same
//     columns on `site_url_slug` are INTEGER.  Existing databases carry
//     that shape, so it is kept as is.
//   - The DDL lives in internal/migrations; CreateTable renders the same
//     column definitions and a test keeps the two in step.
package schema

// SitesTable exposes the `sites` columns as typed fields.
type SitesTable struct {
	*Table
	SiteID       *Column
	UUCode       *Column
	Title        *Column
	Description  *Column
	Type         *Column
	HeroImageURL *Column
	IsActive     *Column
	CreatedAt    *Column
	CreatedBy    *Column
	UpdatedAt    *Column
	UpdatedBy    *Column
	Tags         *Column
	Address      *Column
}

// SiteURLSlugTable exposes the `site_url_slug` columns as typed fields.
type SiteURLSlugTable struct {
	*Table
	SiteURLSlugID *Column
	SiteID        *Column
	URLSlug       *Column
	IsActive      *Column
	CreatedAt     *Column
	CreatedBy     *Column
	UpdatedAt     *Column
	UpdatedBy     *Column
}

// URLSlugMaxLen is the VARCHAR bound on site_url_slug.url_slug.
const URLSlugMaxLen = 50

var (
	Sites       = newSitesTable()
	SiteURLSlug = newSiteURLSlugTable()

	// SiteURLSlugs: one site has many slugs.
	SiteURLSlugs = &Relation{
		Name:       "siteUrlSlugs",
		Kind:       HasMany,
		From:       Sites.Table,
		To:         SiteURLSlug.Table,
		FromColumn: Sites.SiteID,
		ToColumn:   SiteURLSlug.SiteID,
	}

	// SiteOfSlug: one slug belongs to one site.
	SiteOfSlug = SiteURLSlugs.Inverse("site")
)

// Type pairs are (postgres, mysql).
const (
	pgNow = "now()"
	myNow = "CURRENT_TIMESTAMP(6)"
)

func newSitesTable() *SitesTable {
	t := newTable("sites")
	return &SitesTable{
		Table:        t,
		SiteID:       t.add("site_id", typed("SERIAL", "INT AUTO_INCREMENT"), primaryKey),
		UUCode:       t.add("uucode", typed("VARCHAR", "VARCHAR(255)"), notNull),
		Title:        t.add("title", typed("VARCHAR", "VARCHAR(255)")),
		Description:  t.add("description", typed("TEXT", "TEXT")),
		Type:         t.add("type", typed("VARCHAR", "VARCHAR(255)")),
		HeroImageURL: t.add("hero_image_url", typed("TEXT", "TEXT")),
		IsActive:     t.add("is_active", typed("BOOLEAN", "BOOLEAN"), notNull, defaultTo("true", "true")),
		CreatedAt:    t.add("created_at", typed("TIMESTAMP", "DATETIME(6)"), notNull, defaultTo(pgNow, myNow)),
		CreatedBy:    t.add("created_by", typed("BOOLEAN", "BOOLEAN")),
		UpdatedAt:    t.add("updated_at", typed("TIMESTAMP", "DATETIME(6)")),
		UpdatedBy:    t.add("updated_by", typed("BOOLEAN", "BOOLEAN")),
		Tags:         t.add("tags", typed("JSONB", "JSON")),
		Address:      t.add("address", typed("VARCHAR", "VARCHAR(255)")),
	}
}

func newSiteURLSlugTable() *SiteURLSlugTable {
	t := newTable("site_url_slug")
	return &SiteURLSlugTable{
		Table:         t,
		SiteURLSlugID: t.add("site_url_slug_id", typed("SERIAL", "INT AUTO_INCREMENT"), primaryKey),
		SiteID:        t.add("site_id", typed("INTEGER", "INT"), notNull),
		URLSlug:       t.add("url_slug", typed("VARCHAR(50)", "VARCHAR(50)")),
		IsActive:      t.add("is_active", typed("BOOLEAN", "BOOLEAN"), notNull, defaultTo("true", "true")),
		CreatedAt:     t.add("created_at", typed("TIMESTAMP", "DATETIME(6)"), notNull, defaultTo(pgNow, myNow)),
		CreatedBy:     t.add("created_by", typed("INTEGER", "INT")),
		UpdatedAt:     t.add("updated_at", typed("TIMESTAMP", "DATETIME(6)")),
		UpdatedBy:     t.add("updated_by", typed("INTEGER", "INT")),
	}
}
