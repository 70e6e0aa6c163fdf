// internal/site/slug.go
//
// URL slug helpers.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "item".
// 5. Cut to schema.URLSlugMaxLen, dropping a dash left at the cut.

package site

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yanizio/sitequery/internal/schema"
)

// ErrSlugTooLong is returned for slugs that do not fit url_slug.
var ErrSlugTooLong = errors.New("url slug exceeds column length")

// MakeSlug converts text to lower-kebab ASCII that fits url_slug.
func MakeSlug(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastWasDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > schema.URLSlugMaxLen {
		slug = strings.TrimRight(slug[:schema.URLSlugMaxLen], "-")
	}
	return slug
}

// CheckSlug rejects values the url_slug column cannot hold.  NULL is fine.
func CheckSlug(s *string) error {
	if s != nil && len(*s) > schema.URLSlugMaxLen {
		return fmt.Errorf("%w: %d > %d", ErrSlugTooLong, len(*s), schema.URLSlugMaxLen)
	}
	return nil
}
