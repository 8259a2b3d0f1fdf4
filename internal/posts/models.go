package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is the canonical record for a published blog entry. Records are
// created during reindex runs and are immutable between runs; the markdown
// file on disk stays the source of truth.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug        string     `bun:"slug,notnull,unique" json:"slug"`
	Title       string     `bun:"title,notnull" json:"title"`
	Summary     *string    `bun:"summary" json:"summary,omitempty"`
	Tags        []string   `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Draft       bool       `bun:"draft,notnull,default:false" json:"draft"`
	PublishedAt time.Time  `bun:"published_at,notnull" json:"published_at"`
	FilePath    string     `bun:"file_path,notnull" json:"file_path"`
	Checksum    string     `bun:"checksum,notnull" json:"checksum"`
	BodyHTML    string     `bun:"body_html,notnull" json:"body_html"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Visible reports whether the post should appear in listings, feeds, and
// builds. Draft posts surface only when the caller opts in.
func (p *Post) Visible(includeDrafts bool) bool {
	if p == nil {
		return false
	}
	if p.DeletedAt != nil {
		return false
	}
	if p.Draft && !includeDrafts {
		return false
	}
	return true
}

// ArchiveYear groups visible posts by publication year, newest year first.
type ArchiveYear struct {
	Year  int
	Posts []*Post
}

// TagCount reports how many visible posts carry a tag.
type TagCount struct {
	Tag   string
	Count int
}
