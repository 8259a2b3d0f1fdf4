package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/routes"
)

var feedGeneratedAt = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func feedPost(slug, title string, published time.Time, summary string) *posts.Post {
	record := &posts.Post{
		ID:          identity.PostUUID(slug),
		Slug:        slug,
		Title:       title,
		PublishedAt: published,
	}
	if summary != "" {
		record.Summary = &summary
	}
	return record
}

func TestItemsFromPosts(t *testing.T) {
	table, err := routes.NewTable("https://blog.example.com")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	records := []*posts.Post{
		feedPost("hello-world", "Hello, World", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), "  A   first\npost.  "),
		nil,
		feedPost("undated", "Undated", time.Time{}, ""),
	}

	items := ItemsFromPosts(records, table, feedGeneratedAt)
	if len(items) != 2 {
		t.Fatalf("expected nil records dropped, got %d items", len(items))
	}
	if items[0].Link != "https://blog.example.com/posts/hello-world" {
		t.Fatalf("unexpected link %q", items[0].Link)
	}
	if items[0].Summary != "A first post." {
		t.Fatalf("expected whitespace-normalized summary, got %q", items[0].Summary)
	}
	if !items[1].PublishedAt.Equal(feedGeneratedAt) {
		t.Fatalf("expected generated-at fallback, got %s", items[1].PublishedAt)
	}
}

func TestBuildRSSEscapesContent(t *testing.T) {
	meta := Metadata{
		Title:   "Tips & Tricks",
		BaseURL: "https://blog.example.com",
		Lang:    "en",
	}
	items := []Item{{
		Title:       "Generics <T> in practice",
		Link:        "https://blog.example.com/posts/generics",
		GUID:        "guid-1",
		PublishedAt: feedGeneratedAt,
	}}

	doc := BuildRSS(meta, items, feedGeneratedAt)
	for _, want := range []string{
		"<title>Tips &amp; Tricks</title>",
		"<title>Generics &lt;T&gt; in practice</title>",
		"<language>en</language>",
		`<guid isPermaLink="false">guid-1</guid>`,
		"<pubDate>Mon, 01 Jul 2024 10:00:00 +0000</pubDate>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("rss missing %q:\n%s", want, doc)
		}
	}
}

func TestBuildAtom(t *testing.T) {
	meta := Metadata{
		Title:   "Field Notes",
		BaseURL: "https://blog.example.com/",
		Lang:    "en",
	}
	items := []Item{{
		Title:       "Hello, World",
		Link:        "https://blog.example.com/posts/hello-world",
		GUID:        "3f2c2f0a-0000-0000-0000-000000000000",
		PublishedAt: feedGeneratedAt,
		UpdatedAt:   feedGeneratedAt.Add(time.Hour),
	}}

	doc := BuildAtom(meta, items, feedGeneratedAt)
	for _, want := range []string{
		`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">`,
		"<id>https://blog.example.com/feed.atom.xml</id>",
		"<id>urn:uuid:3f2c2f0a-0000-0000-0000-000000000000</id>",
		"<updated>2024-07-01T11:00:00Z</updated>",
		"<published>2024-07-01T10:00:00Z</published>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("atom missing %q:\n%s", want, doc)
		}
	}
}

func TestBuildSitemapDedupesAndSorts(t *testing.T) {
	pages := []SitemapPage{
		{Route: "/posts/zebra", LastModified: feedGeneratedAt},
		{Route: "/posts/alpha"},
		{Route: "posts/alpha"},
		{Route: ""},
	}

	doc := BuildSitemap("https://blog.example.com/", pages, feedGeneratedAt)
	if strings.Count(doc, "<loc>https://blog.example.com/posts/alpha</loc>") != 1 {
		t.Fatalf("expected duplicate locations collapsed:\n%s", doc)
	}
	if !strings.Contains(doc, "<loc>https://blog.example.com/</loc>") {
		t.Fatalf("expected empty route to map to root:\n%s", doc)
	}
	alpha := strings.Index(doc, "posts/alpha")
	zebra := strings.Index(doc, "posts/zebra")
	if alpha < 0 || zebra < 0 || alpha > zebra {
		t.Fatalf("expected sorted locations:\n%s", doc)
	}
	if !strings.Contains(doc, "<lastmod>2024-07-01T10:00:00Z</lastmod>") {
		t.Fatalf("expected fallback lastmod:\n%s", doc)
	}
}

func TestBuildRobots(t *testing.T) {
	withSitemap := BuildRobots("https://blog.example.com", true)
	if !strings.Contains(withSitemap, "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Fatalf("expected sitemap directive:\n%s", withSitemap)
	}

	plain := BuildRobots("", false)
	if strings.Contains(plain, "Sitemap:") {
		t.Fatalf("expected no sitemap directive:\n%s", plain)
	}
	if !strings.HasPrefix(plain, "User-agent: *\nAllow: /\n") {
		t.Fatalf("unexpected robots body:\n%s", plain)
	}
}
