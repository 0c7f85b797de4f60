package domain

import (
	"strings"
	"time"
)

// Post type defaults applied by the normalizer when the export leaves the
// field empty.
const (
	DefaultPostType = "newsletter"

	AudienceEveryone = "everyone"
	AudienceOnlyPaid = "only_paid"
	AudienceOnlyFree = "only_free"
)

// Post represents one published or draft entry from the export's posts table.
// Records are parsed once and never mutated; derived analytics live in their
// own structures keyed by ID.
type Post struct {
	ID          string     `json:"post_id" validate:"required"`
	Slug        string     `json:"slug,omitempty"`
	Date        *time.Time `json:"post_date"`
	Published   bool       `json:"is_published"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	Type        string     `json:"type"`
	Audience    string     `json:"audience"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`

	// Optional body content, only populated on the content-export path.
	HTMLPath    string `json:"html_path,omitempty"`
	HTMLContent string `json:"-"`
}

// Month returns the calendar-month cohort key ("YYYY-MM") of the post date,
// or "" when the post has no date.
func (p *Post) Month() string {
	if p.Date == nil {
		return ""
	}
	return p.Date.Format("2006-01")
}

// SplitPostID splits the export's compound post identifier on the first "."
// into id and slug. Everything after the first delimiter is the slug, so
// slugs containing dots are preserved intact.
func SplitPostID(field string) (id, slug string) {
	id, slug, _ = strings.Cut(field, ".")
	return id, slug
}

// ParseBool reports whether s is exactly the literal "true". The export
// writes booleans as "true"/"false"; any other value ("TRUE", "1", empty)
// is false. Downstream statistics depend on this strictness, keep it.
func ParseBool(s string) bool {
	return s == "true"
}
