// Package feeds builds the RSS and Atom documents for the blog. The same
// builders back the HTTP feed endpoints and the static generator artifacts.
package feeds

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/routes"
)

const maxFeedItems = 100

// Item is a single feed entry.
type Item struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// Metadata describes the channel-level fields shared by both feed formats.
type Metadata struct {
	Title       string
	Description string
	BaseURL     string
	Lang        string
}

// ItemsFromPosts projects visible posts into feed entries, newest first,
// capped at maxFeedItems.
func ItemsFromPosts(records []*posts.Post, table *routes.Table, generatedAt time.Time) []Item {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}

		link := "/posts/" + rec.Slug
		if table != nil {
			if url, err := table.Post(rec.Slug); err == nil {
				link = url
			}
		}

		publishedAt := rec.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = generatedAt
		}
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = publishedAt
		}

		item := Item{
			Title:       strings.TrimSpace(rec.Title),
			Link:        link,
			GUID:        rec.ID.String(),
			PublishedAt: publishedAt,
			UpdatedAt:   updatedAt,
		}
		if rec.Summary != nil {
			item.Summary = normalizeWhitespace(*rec.Summary)
		}
		items = append(items, item)
	}

	if len(items) > maxFeedItems {
		items = append([]Item(nil), items[:maxFeedItems]...)
	}
	return items
}

// BuildRSS renders an RSS 2.0 document.
func BuildRSS(meta Metadata, items []Item, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(meta.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(descriptionWithFallback(meta))))
	if strings.TrimSpace(meta.Lang) != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(meta.Lang)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

// BuildAtom renders an Atom document.
func BuildAtom(meta Metadata, items []Item, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)
	feedID := baseLink + "/feed.atom.xml"

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if lang := strings.TrimSpace(meta.Lang); lang != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(lang)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(meta.Title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	for _, item := range items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>urn:uuid:%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func descriptionWithFallback(meta Metadata) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		return desc
	}
	return "Latest updates"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
