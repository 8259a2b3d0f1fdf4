package render

import (
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/site"
)

// Template names every theme is expected to provide.
const (
	TemplateIndex   = "index.html"
	TemplatePost    = "post.html"
	TemplateArchive = "archive.html"
	TemplateTag     = "tag.html"
)

// TemplateContext captures the data contract passed to TemplateRenderer implementations.
type TemplateContext struct {
	Site    SiteMetadata
	Posts   []*posts.Post
	Post    *posts.Post
	Archive []posts.ArchiveYear
	Tag     string
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes the display configuration to templates.
type SiteMetadata struct {
	Title       string
	Author      string
	Description string
	Avatar      string
	AvatarMode  string
	Links       []site.Link
	Lang        string
	BaseURL     string
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
}

// SiteMetadataFrom projects the read-only site config into template shape.
func SiteMetadataFrom(cfg site.Config) SiteMetadata {
	return SiteMetadata{
		Title:       cfg.Title,
		Author:      cfg.Author,
		Description: cfg.Description,
		Avatar:      cfg.Avatar,
		AvatarMode:  cfg.AvatarMode,
		Links:       append([]site.Link(nil), cfg.Links...),
		Lang:        cfg.Lang,
		BaseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
	table   *routes.Table
}

// NewTemplateHelpers binds the route table used for URL construction.
func NewTemplateHelpers(baseURL string, table *routes.Table) TemplateHelpers {
	return TemplateHelpers{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		table:   table,
	}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// PostURL resolves the route for a post slug, falling back to a plain path
// when no route table is bound.
func (h TemplateHelpers) PostURL(slug string) string {
	if h.table != nil {
		if url, err := h.table.Post(slug); err == nil {
			return url
		}
	}
	return h.WithBaseURL("/posts/" + slug)
}

// TagURL resolves the listing route for a tag.
func (h TemplateHelpers) TagURL(tag string) string {
	if h.table != nil {
		if url, err := h.table.Tag(tag); err == nil {
			return url
		}
	}
	return h.WithBaseURL("/tags/" + tag)
}
