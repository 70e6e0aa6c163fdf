// internal/site/tuple.go
//
// Decoder for the aggregated child column produced by the nested strategy.
//
// Context
// -------
// The lateral subquery emits a JSON array of arrays.  Each inner array is
// one `site_url_slug` row with its columns in table order:
//
//	[site_url_slug_id, site_id, url_slug, is_active,
//	 created_at, created_by, updated_at, updated_by]
//
// Engines disagree on scalar encodings inside JSON: postgres writes
// booleans as true/false and timestamps as `2006-01-02T15:04:05.999999`,
// while MySQL writes booleans as 1/0 and timestamps with a space
// separator.  The decoders below accept both.
package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/yanizio/sitequery/internal/schema"
)

// SlugTuples is the decoded aggregated child column.  It is never nil
// after a successful Scan.
type SlugTuples []URLSlug

// Scan implements sql.Scanner.
func (s *SlugTuples) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = SlugTuples{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("site: cannot scan %T into SlugTuples", src)
	}

	var tuples [][]json.RawMessage
	if err := json.Unmarshal(raw, &tuples); err != nil {
		return fmt.Errorf("site: decode slug tuples: %w", err)
	}
	out := make(SlugTuples, 0, len(tuples))
	for i, t := range tuples {
		slug, err := decodeSlugTuple(t)
		if err != nil {
			return fmt.Errorf("site: slug tuple %d: %w", i, err)
		}
		out = append(out, slug)
	}
	*s = out
	return nil
}

var slugTupleLen = len(schema.SiteURLSlug.Columns())

func decodeSlugTuple(t []json.RawMessage) (URLSlug, error) {
	var s URLSlug
	if len(t) != slugTupleLen {
		return s, fmt.Errorf("got %d fields, want %d", len(t), slugTupleLen)
	}
	var err error
	if s.ID, err = jsonInt(t[0]); err != nil {
		return s, fmt.Errorf("site_url_slug_id: %w", err)
	}
	if s.SiteID, err = jsonInt(t[1]); err != nil {
		return s, fmt.Errorf("site_id: %w", err)
	}
	if !isNull(t[2]) {
		var v string
		if err := json.Unmarshal(t[2], &v); err != nil {
			return s, fmt.Errorf("url_slug: %w", err)
		}
		s.URLSlug = &v
	}
	if s.IsActive, err = jsonBool(t[3]); err != nil {
		return s, fmt.Errorf("is_active: %w", err)
	}
	if s.CreatedAt, err = jsonTime(t[4]); err != nil {
		return s, fmt.Errorf("created_at: %w", err)
	}
	if s.CreatedBy, err = jsonIntPtr(t[5]); err != nil {
		return s, fmt.Errorf("created_by: %w", err)
	}
	if !isNull(t[6]) {
		v, err := jsonTime(t[6])
		if err != nil {
			return s, fmt.Errorf("updated_at: %w", err)
		}
		s.UpdatedAt = &v
	}
	if s.UpdatedBy, err = jsonIntPtr(t[7]); err != nil {
		return s, fmt.Errorf("updated_by: %w", err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func jsonInt(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Int64()
}

func jsonIntPtr(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	v, err := jsonInt(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func jsonBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	n, err := jsonInt(raw)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %s", raw)
	}
	return n != 0, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
}

func jsonTime(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %s", strconv.Quote(s))
}
