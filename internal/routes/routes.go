// Package routes owns the single route table shared by the HTTP server,
// templates, feeds, and the static generator, so every component produces the
// same URLs for a post.
package routes

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Route names registered under the site group.
const (
	GroupSite = "site"

	RouteHome    = "home"
	RoutePost    = "post"
	RouteArchive = "archive"
	RouteTag     = "tag"
	RouteFeed    = "feed"
	RouteAtom    = "atom"
	RouteSitemap = "sitemap"
)

// Table resolves site URLs through a go-urlkit route manager.
type Table struct {
	manager *urlkit.RouteManager
	group   *urlkit.Group
}

// NewTable builds the canonical route table rooted at baseURL. An empty
// baseURL yields site-relative paths, which is what the HTTP server wants;
// the generator passes the configured base URL to emit absolute links.
func NewTable(baseURL string) (*Table, error) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupSite,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths: map[string]string{
					RouteHome:    "/",
					RoutePost:    "/posts/:slug",
					RouteArchive: "/archive",
					RouteTag:     "/tags/:tag",
					RouteFeed:    "/feed.xml",
					RouteAtom:    "/feed.atom.xml",
					RouteSitemap: "/sitemap.xml",
				},
			},
		},
	})

	group, err := lookupGroup(manager, GroupSite)
	if err != nil {
		return nil, err
	}
	return &Table{manager: manager, group: group}, nil
}

// Home returns the index URL.
func (t *Table) Home() (string, error) {
	return t.build(RouteHome, nil)
}

// Post returns the URL for a post slug.
func (t *Table) Post(slug string) (string, error) {
	return t.build(RoutePost, map[string]any{"slug": slug})
}

// Archive returns the archive URL.
func (t *Table) Archive() (string, error) {
	return t.build(RouteArchive, nil)
}

// Tag returns the listing URL for a tag.
func (t *Table) Tag(tag string) (string, error) {
	return t.build(RouteTag, map[string]any{"tag": tag})
}

// Feed returns the RSS feed URL.
func (t *Table) Feed() (string, error) {
	return t.build(RouteFeed, nil)
}

// Atom returns the Atom feed URL.
func (t *Table) Atom() (string, error) {
	return t.build(RouteAtom, nil)
}

// Sitemap returns the sitemap URL.
func (t *Table) Sitemap() (string, error) {
	return t.build(RouteSitemap, nil)
}

func (t *Table) build(route string, params map[string]any) (string, error) {
	if t == nil || t.group == nil {
		return "", fmt.Errorf("routes: table not configured")
	}
	builder, err := safeBuilder(t.group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("routes: build %s: %w", route, err)
	}
	return url, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: builder panic for %q: %v", route, rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}
