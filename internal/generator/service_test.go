package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/pkg/storage"
)

var buildTemplates = map[string]string{
	"index.html":   `<html><body><h1>{{.Site.Title}}</h1>{{range .Posts}}<a href="{{$.Helpers.PostURL .Slug}}">{{.Title}}</a>{{end}}</body></html>`,
	"post.html":    `<html><body><article>{{.Post.Title}}</article></body></html>`,
	"archive.html": `<html><body>{{range .Archive}}<h2>{{.Year}}</h2>{{end}}</body></html>`,
	"tag.html":     `<html><body><h1>{{.Tag}}</h1></body></html>`,
}

var buildContent = map[string]string{
	"hello-world.md": "---\ntitle: Hello, World\ndate: 2024-01-14\ntags:\n  - meta\n---\n\nFirst.\n",
	"second.md":      "---\ntitle: Second Post\ndate: 2024-03-02\n---\n\nSecond.\n",
}

type buildFixture struct {
	svc    Service
	out    string
	cfg    site.Config
	assets string
}

func buildConfig(outputDir string) site.Config {
	return site.Config{
		Title:   "Field Notes",
		Author:  "Jordan Mercer",
		BaseURL: "https://blog.example.com",
		Lang:    "en",
		Generator: site.GeneratorConfig{
			Enabled:         true,
			OutputDir:       outputDir,
			Incremental:     true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
		},
	}
}

func newBuildFixture(t *testing.T, cfg site.Config) *buildFixture {
	t.Helper()

	contentFS := fstest.MapFS{}
	for name, body := range buildContent {
		contentFS[name] = &fstest.MapFile{Data: []byte(body), ModTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	}
	md := markdown.NewServiceWithFS(markdown.Config{BasePath: ".", Pattern: "*.md"}, nil, contentFS)
	postsSvc, err := posts.NewService(posts.Config{ContentDir: "."}, posts.Dependencies{
		Markdown: md,
		Repo:     posts.NewMemoryPostRepository(),
	})
	if err != nil {
		t.Fatalf("posts service: %v", err)
	}
	if _, err := postsSvc.Reindex(context.Background(), posts.ReindexOptions{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	templateFS := fstest.MapFS{}
	for name, body := range buildTemplates {
		templateFS[name] = &fstest.MapFile{Data: []byte(body)}
	}
	engine, err := render.NewEngine(templateFS, "*.html")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	table, err := routes.NewTable(cfg.BaseURL)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}

	assetsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetsDir, "style.css"), []byte("body{margin:0}"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	svc, err := NewService(cfg, Dependencies{
		Posts:          postsSvc,
		Renderer:       engine,
		Routes:         table,
		Storage:        storage.NewFilesystemProvider(cfg.Generator.OutputDir, cfg.Generator.OutputDir),
		ThemeAssetsDir: assetsDir,
	})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	return &buildFixture{svc: svc, out: cfg.Generator.OutputDir, cfg: cfg, assets: assetsDir}
}

func (f *buildFixture) readFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.out, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestBuildWritesFullSite(t *testing.T) {
	fixture := newBuildFixture(t, buildConfig(t.TempDir()))

	result, err := fixture.svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// index, archive, one tag page, two posts
	if result.PagesRendered != 5 {
		t.Fatalf("expected 5 pages, got %+v", result)
	}
	if result.FeedsWritten != 2 || !result.Sitemap || !result.Robots || result.AssetsCopied != 1 {
		t.Fatalf("unexpected artifact counts %+v", result)
	}

	index := fixture.readFile(t, "index.html")
	if !strings.Contains(index, `<a href="https://blog.example.com/posts/hello-world">Hello, World</a>`) {
		t.Fatalf("unexpected index:\n%s", index)
	}
	post := fixture.readFile(t, "posts/hello-world/index.html")
	if !strings.Contains(post, "Hello, World") {
		t.Fatalf("unexpected post page:\n%s", post)
	}
	fixture.readFile(t, "archive/index.html")
	fixture.readFile(t, "tags/meta/index.html")

	feed := fixture.readFile(t, "feed.xml")
	if !strings.Contains(feed, "<rss version=\"2.0\">") {
		t.Fatalf("unexpected feed:\n%s", feed)
	}
	fixture.readFile(t, "feed.atom.xml")

	sitemap := fixture.readFile(t, "sitemap.xml")
	if !strings.Contains(sitemap, "<loc>https://blog.example.com/posts/hello-world</loc>") {
		t.Fatalf("unexpected sitemap:\n%s", sitemap)
	}

	robots := fixture.readFile(t, "robots.txt")
	if !strings.Contains(robots, "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Fatalf("unexpected robots:\n%s", robots)
	}

	if css := fixture.readFile(t, "assets/style.css"); css != "body{margin:0}" {
		t.Fatalf("unexpected asset body %q", css)
	}
	fixture.readFile(t, manifestFileName)
}

func TestIncrementalBuildSkipsUnchangedPages(t *testing.T) {
	fixture := newBuildFixture(t, buildConfig(t.TempDir()))

	if _, err := fixture.svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	result, err := fixture.svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.PagesRendered != 0 || result.PagesSkipped != 5 {
		t.Fatalf("expected all pages skipped, got %+v", result)
	}
	if result.AssetsCopied != 0 {
		t.Fatalf("expected unchanged assets skipped, got %+v", result)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	out := t.TempDir()
	fixture := newBuildFixture(t, buildConfig(out))

	result, err := fixture.svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesRendered != 5 {
		t.Fatalf("expected dry run to report pages, got %+v", result)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, found %d entries", len(entries))
	}
}

func TestBuildEmbedsAnalyticsSnippet(t *testing.T) {
	cfg := buildConfig(t.TempDir())
	cfg.Middlewares = []string{site.MiddlewareAnalytics}
	cfg.Analytics = site.Analytics{TrackingID: "blog.example.com", Provider: site.AnalyticsProviderPlausible}
	fixture := newBuildFixture(t, cfg)

	if _, err := fixture.svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	index := fixture.readFile(t, "index.html")
	if !strings.Contains(index, "plausible.io/js/script.js") {
		t.Fatalf("expected analytics snippet in generated page:\n%s", index)
	}
	if strings.Index(index, "plausible.io") > strings.Index(index, "</body>") {
		t.Fatalf("expected snippet before closing body tag:\n%s", index)
	}
}

func TestCleanRemovesOutput(t *testing.T) {
	out := t.TempDir()
	fixture := newBuildFixture(t, buildConfig(out))

	if _, err := fixture.svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := fixture.svc.Clean(context.Background()); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "index.html")); !os.IsNotExist(err) {
		t.Fatalf("expected output removed, got %v", err)
	}
}

func TestDisabledServiceRejectsBuilds(t *testing.T) {
	cfg := buildConfig(t.TempDir())
	cfg.Generator.Enabled = false

	svc, err := NewService(cfg, Dependencies{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrGeneratorDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrGeneratorDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
