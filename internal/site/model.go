// internal/site/model.go
//
// Row models for the `sites` and `site_url_slug` tables.
//
// Context
// -------
// `Site` and `URLSlug` mirror one row each and are scanned by sqlx through
// their `db:` tags.  Nullable columns are pointers; callers must nil-check
// before use.  NOT NULL timestamps are plain `time.Time`.
//
// Notes
// -----
//   - `Site.CreatedBy` / `Site.UpdatedBy` are `*bool` because the columns
//     are BOOLEAN in the deployed schema, unlike the INTEGER user ids on
//     `URLSlug`.
//   - `Tags` is stored as a JSON array of strings.
package site

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Site mirrors one row in the `sites` table.
type Site struct {
	ID           int64      `db:"site_id"`
	UUCode       string     `db:"uucode"`
	Title        *string    `db:"title"`
	Description  *string    `db:"description"`
	Type         *string    `db:"type"`
	HeroImageURL *string    `db:"hero_image_url"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	CreatedBy    *bool      `db:"created_by"`
	UpdatedAt    *time.Time `db:"updated_at"`
	UpdatedBy    *bool      `db:"updated_by"`
	Tags         Tags       `db:"tags"`
	Address      *string    `db:"address"`
}

// URLSlug mirrors one row in the `site_url_slug` table.
type URLSlug struct {
	ID        int64      `db:"site_url_slug_id"`
	SiteID    int64      `db:"site_id"`
	URLSlug   *string    `db:"url_slug"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	CreatedBy *int64     `db:"created_by"`
	UpdatedAt *time.Time `db:"updated_at"`
	UpdatedBy *int64     `db:"updated_by"`
}

// Tags is an ordered list of labels kept in a JSON column.  A nil Tags is
// written as SQL NULL.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("site: cannot scan %T into Tags", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("site: decode tags: %w", err)
	}
	*t = out
	return nil
}
