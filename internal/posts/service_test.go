package posts

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
)

var fixtureModTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixtureFS(files map[string]string) fstest.MapFS {
	mapFS := fstest.MapFS{}
	for path, content := range files {
		mapFS[path] = &fstest.MapFile{Data: []byte(content), ModTime: fixtureModTime}
	}
	return mapFS
}

func newTestService(t *testing.T, files map[string]string) (Service, Repository) {
	t.Helper()

	md := markdown.NewServiceWithFS(markdown.Config{BasePath: ".", Pattern: "*.md"}, nil, fixtureFS(files))
	repo := NewMemoryPostRepository()
	svc, err := NewService(Config{ContentDir: "."}, Dependencies{
		Markdown: md,
		Repo:     repo,
		Logger:   logging.NoOp(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

const helloPost = `---
title: Hello, World
date: 2024-01-14
tags:
  - meta
---

A first post.
`

const taggedPost = `---
title: Tagged Post
date: 2024-03-02
tags:
  - go
  - meta
---

Body.
`

const draftPost = `---
title: Drafty
date: 2025-02-11
draft: true
---

Unfinished.
`

func TestReindexIndexesDocuments(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
	})

	result, err := svc.Reindex(context.Background(), ReindexOptions{})
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if result.Indexed != 2 {
		t.Fatalf("expected 2 indexed, got %+v", result)
	}

	post, err := svc.GetBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if post.Title != "Hello, World" {
		t.Fatalf("unexpected title %q", post.Title)
	}
	if post.BodyHTML == "" {
		t.Fatal("expected rendered body html")
	}
	if got := post.PublishedAt.Format("2006-01-02"); got != "2024-01-14" {
		t.Fatalf("unexpected published date %s", got)
	}
}

func TestReindexSkipsUnchangedDocuments(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"hello-world.md": helloPost})

	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("first reindex: %v", err)
	}
	result, err := svc.Reindex(context.Background(), ReindexOptions{})
	if err != nil {
		t.Fatalf("second reindex: %v", err)
	}
	if result.Skipped != 1 || result.Indexed != 0 || result.Updated != 0 {
		t.Fatalf("expected unchanged document to be skipped, got %+v", result)
	}
}

func TestReindexDuplicateSlugLastPathWins(t *testing.T) {
	// Both documents claim the same slug through front matter.
	svc, _ := newTestService(t, map[string]string{
		"a-take.md": "---\ntitle: Modern React Snippets\nslug: modern-react-snippets\ndate: 2025-02-11\n---\n\nOld take.\n",
		"z-take.md": "---\ntitle: Modern React Snippets\nslug: modern-react-snippets\ndate: 2025-03-01\n---\n\nNew take.\n",
	})

	result, err := svc.Reindex(context.Background(), ReindexOptions{})
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if result.Indexed != 1 {
		t.Fatalf("expected collapsed slug to index once, got %+v", result)
	}

	post, err := svc.GetBySlug(context.Background(), "modern-react-snippets")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if post.FilePath != "z-take.md" {
		t.Fatalf("expected last path to win, got %s", post.FilePath)
	}
}

func TestReindexMissingDateFallsBackToModTime(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"undated.md": "---\ntitle: Undated\n---\n\nBody.\n",
	})

	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	post, err := svc.GetBySlug(context.Background(), "undated")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if !post.PublishedAt.Equal(fixtureModTime) {
		t.Fatalf("expected mod time fallback, got %s", post.PublishedAt)
	}
}

func TestReindexRejectsUntitledDocuments(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"untitled.md": "---\ndate: 2024-01-01\n---\n\nBody.\n",
	})

	result, err := svc.Reindex(context.Background(), ReindexOptions{})
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if result.Indexed != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected validation error for untitled document, got %+v", result)
	}
}

func TestReindexDeletesOrphans(t *testing.T) {
	files := map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
	}
	mapFS := fixtureFS(files)
	md := markdown.NewServiceWithFS(markdown.Config{BasePath: ".", Pattern: "*.md"}, nil, mapFS)
	repo := NewMemoryPostRepository()
	svc, err := NewService(Config{ContentDir: "."}, Dependencies{Markdown: md, Repo: repo, Logger: logging.NoOp()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("first reindex: %v", err)
	}

	delete(mapFS, "tagged.md")

	result, err := svc.Reindex(context.Background(), ReindexOptions{DeleteOrphaned: true})
	if err != nil {
		t.Fatalf("second reindex: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected orphan deletion, got %+v", result)
	}
	if _, err := svc.GetBySlug(context.Background(), "tagged"); err == nil {
		t.Fatal("expected orphaned post to be gone")
	}
}

func TestReindexDryRunPersistsNothing(t *testing.T) {
	svc, repo := newTestService(t, map[string]string{"hello-world.md": helloPost})

	result, err := svc.Reindex(context.Background(), ReindexOptions{DryRun: true})
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if result.Indexed != 1 {
		t.Fatalf("expected dry-run to report one new post, got %+v", result)
	}
	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(records))
	}
}

func TestListFiltersDraftsAndSorts(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
		"drafty.md":      draftPost,
	})
	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	records, err := svc.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected drafts filtered, got %d records", len(records))
	}
	if records[0].Slug != "tagged" || records[1].Slug != "hello-world" {
		t.Fatalf("expected newest-first ordering, got %s then %s", records[0].Slug, records[1].Slug)
	}

	withDrafts, err := svc.List(context.Background(), ListOptions{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("list with drafts: %v", err)
	}
	if len(withDrafts) != 3 {
		t.Fatalf("expected drafts included, got %d records", len(withDrafts))
	}
}

func TestListByTag(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
	})
	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	meta, err := svc.ListByTag(context.Background(), "meta", ListOptions{})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(meta) != 2 {
		t.Fatalf("expected 2 meta posts, got %d", len(meta))
	}

	goPosts, err := svc.ListByTag(context.Background(), "GO", ListOptions{})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(goPosts) != 1 || goPosts[0].Slug != "tagged" {
		t.Fatalf("expected case-insensitive tag match, got %v", goPosts)
	}
}

func TestArchiveGroupsByYear(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
		"next-year.md":   "---\ntitle: Next Year\ndate: 2025-01-05\n---\n\nBody.\n",
	})
	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	years, err := svc.Archive(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("expected 2 archive years, got %d", len(years))
	}
	if years[0].Year != 2025 || years[1].Year != 2024 {
		t.Fatalf("expected newest year first, got %d then %d", years[0].Year, years[1].Year)
	}
	if len(years[1].Posts) != 2 {
		t.Fatalf("expected 2 posts in 2024, got %d", len(years[1].Posts))
	}
}

func TestTagsCountsAndSorts(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"hello-world.md": helloPost,
		"tagged.md":      taggedPost,
	})
	if _, err := svc.Reindex(context.Background(), ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	tags, err := svc.Tags(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}
	if tags[0].Tag != "meta" || tags[0].Count != 2 {
		t.Fatalf("expected meta counted twice first, got %+v", tags[0])
	}
	if tags[1].Tag != "go" || tags[1].Count != 1 {
		t.Fatalf("expected go counted once, got %+v", tags[1])
	}
}
