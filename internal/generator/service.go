// Package generator builds the blog into a static directory tree. Pages go
// through the same renderer and route table as the HTTP server, so a
// generated site is byte-for-byte what the server would have sent.
package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/feeds"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/server"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrGeneratorDisabled is returned by the disabled service.
var ErrGeneratorDisabled = errors.New("generator: static generation is disabled")

// ErrPostsServiceRequired indicates the generator was built without a posts service.
var ErrPostsServiceRequired = errors.New("generator: posts service is required")

// ErrRendererRequired indicates the generator was built without a renderer.
var ErrRendererRequired = errors.New("generator: template renderer is required")

// Service builds and removes static site artifacts.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// BuildOptions narrows a build run.
type BuildOptions struct {
	// Slugs limits post rendering to the named posts. Shared pages (index,
	// archive, tags, feeds) still rebuild so listings stay consistent.
	Slugs []string

	// DryRun renders everything but writes nothing.
	DryRun bool

	// IncludeDrafts forces drafts into the build regardless of config.
	IncludeDrafts bool
}

// BuildResult reports what a build produced.
type BuildResult struct {
	GeneratedAt   time.Time
	Duration      time.Duration
	PagesRendered int
	PagesSkipped  int
	FeedsWritten  int
	AssetsCopied  int
	Sitemap       bool
	Robots        bool
	Artifacts     []string
}

// Dependencies carries the collaborators the generator needs.
type Dependencies struct {
	Posts    posts.Service
	Renderer interfaces.TemplateRenderer
	Routes   *routes.Table
	Storage  interfaces.StorageProvider
	Theme    render.ThemeContext

	// ThemeAssetsDir is the directory copied into the output tree when asset
	// copying is enabled.
	ThemeAssetsDir string

	Logger interfaces.Logger
}

// NewService wires a static generator for the given site. A disabled
// generator section yields a service whose Build fails fast.
func NewService(cfg site.Config, deps Dependencies) (Service, error) {
	if !cfg.Generator.Enabled {
		return NewDisabledService(), nil
	}
	if deps.Posts == nil {
		return nil, ErrPostsServiceRequired
	}
	if deps.Renderer == nil {
		return nil, ErrRendererRequired
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}

	return &service{
		cfg:     cfg,
		deps:    deps,
		logger:  deps.Logger,
		writer:  newArtifactWriter(deps.Storage),
		snippet: analyticsSnippetFor(cfg),
	}, nil
}

// NewDisabledService returns a Service that rejects every build.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg     site.Config
	deps    Dependencies
	logger  interfaces.Logger
	writer  artifactWriter
	snippet string
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrGeneratorDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrGeneratorDisabled
}

// page is a single render unit within a build.
type page struct {
	Route    string
	Template string
	Context  render.TemplateContext
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	start := time.Now()
	generatedAt := start.UTC()

	if s.cfg.Generator.CleanBuild && !opts.DryRun {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
	}

	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}
	next := newBuildManifest()
	next.GeneratedAt = generatedAt

	includeDrafts := opts.IncludeDrafts || s.cfg.Content.IncludeDrafts
	records, err := s.deps.Posts.List(ctx, posts.ListOptions{IncludeDrafts: includeDrafts})
	if err != nil {
		return nil, fmt.Errorf("generator: list posts: %w", err)
	}

	pages, err := s.collectPages(ctx, records, includeDrafts)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{GeneratedAt: generatedAt}
	slugFilter := slugSet(opts.Slugs)
	sitemapPages := make([]feeds.SitemapPage, 0, len(pages))

	for _, pg := range pages {
		rel := relativeRoute(pg.Route, s.cfg.BaseURL)
		output := outputPathForRoute(rel)
		sitemapPages = append(sitemapPages, feeds.SitemapPage{Route: rel, LastModified: generatedAt})

		if len(slugFilter) > 0 && pg.Context.Post != nil {
			if _, wanted := slugFilter[pg.Context.Post.Slug]; !wanted {
				if prev, ok := manifest.Pages[rel]; ok {
					next.Pages[rel] = prev
					result.PagesSkipped++
					continue
				}
			}
		}

		body, err := s.renderPage(pg)
		if err != nil {
			return nil, err
		}

		hash := contentHash(body)
		if s.cfg.Generator.Incremental && !s.cfg.Generator.CleanBuild {
			if prev, ok := manifest.Pages[rel]; ok && prev.Hash == hash {
				next.Pages[rel] = prev
				result.PagesSkipped++
				continue
			}
		}

		if !opts.DryRun {
			if err := s.writer.WriteFile(ctx, writeFileRequest{
				Path:        output,
				Content:     bytes.NewReader(body),
				Size:        int64(len(body)),
				Category:    categoryPage,
				ContentType: "text/html; charset=utf-8",
				Checksum:    hash,
			}); err != nil {
				return nil, fmt.Errorf("generator: write page %s: %w", output, err)
			}
		}

		next.Pages[rel] = manifestPage{
			Route:      rel,
			Output:     output,
			Template:   pg.Template,
			Hash:       hash,
			RenderedAt: generatedAt,
		}
		result.PagesRendered++
		result.Artifacts = append(result.Artifacts, output)
	}

	if s.cfg.Generator.GenerateFeeds {
		written, err := s.writeFeeds(ctx, records, generatedAt, opts.DryRun, result)
		if err != nil {
			return nil, err
		}
		result.FeedsWritten = written
	}

	if s.cfg.Generator.GenerateSitemap {
		if err := s.writeSitemap(ctx, sitemapPages, generatedAt, opts.DryRun, result); err != nil {
			return nil, err
		}
	}

	if s.cfg.Generator.GenerateRobots {
		if err := s.writeRobots(ctx, opts.DryRun, result); err != nil {
			return nil, err
		}
	}

	if s.cfg.Generator.CopyAssets {
		copied, err := s.copyAssets(ctx, manifest, next, generatedAt, opts.DryRun, result)
		if err != nil {
			return nil, err
		}
		result.AssetsCopied = copied
	}

	if !opts.DryRun {
		if err := s.persistManifest(ctx, next); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	s.logger.Info("generator.build_complete",
		"pages", result.PagesRendered,
		"skipped", result.PagesSkipped,
		"assets", result.AssetsCopied,
		"duration_ms", result.Duration.Milliseconds(),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	s.logger.Info("generator.clean", "output_dir", s.cfg.Generator.OutputDir)
	if err := s.writer.Remove(ctx, "."); err != nil {
		return fmt.Errorf("generator: clean output: %w", err)
	}
	return nil
}

// collectPages expands the site into its render units: index, archive, one
// page per tag, one page per post.
func (s *service) collectPages(ctx context.Context, records []*posts.Post, includeDrafts bool) ([]page, error) {
	base := s.baseContext()

	pages := make([]page, 0, len(records)+2)

	home := base
	home.Posts = records
	pages = append(pages, page{
		Route:    s.routeFor(s.deps.Routes.Home, "/"),
		Template: render.TemplateIndex,
		Context:  home,
	})

	years, err := s.deps.Posts.Archive(ctx, posts.ListOptions{IncludeDrafts: includeDrafts})
	if err != nil {
		return nil, fmt.Errorf("generator: archive: %w", err)
	}
	archive := base
	archive.Archive = years
	pages = append(pages, page{
		Route:    s.routeFor(s.deps.Routes.Archive, "/archive"),
		Template: render.TemplateArchive,
		Context:  archive,
	})

	tags, err := s.deps.Posts.Tags(ctx, posts.ListOptions{IncludeDrafts: includeDrafts})
	if err != nil {
		return nil, fmt.Errorf("generator: tags: %w", err)
	}
	for _, tag := range tags {
		tagged, err := s.deps.Posts.ListByTag(ctx, tag.Tag, posts.ListOptions{IncludeDrafts: includeDrafts})
		if err != nil {
			return nil, fmt.Errorf("generator: tag %s: %w", tag.Tag, err)
		}
		tagCtx := base
		tagCtx.Posts = tagged
		tagCtx.Tag = tag.Tag

		route := "/tags/" + tag.Tag
		if url, err := s.deps.Routes.Tag(tag.Tag); err == nil {
			route = url
		}
		pages = append(pages, page{Route: route, Template: render.TemplateTag, Context: tagCtx})
	}

	for _, rec := range records {
		postCtx := base
		postCtx.Post = rec

		route := "/posts/" + rec.Slug
		if url, err := s.deps.Routes.Post(rec.Slug); err == nil {
			route = url
		}
		pages = append(pages, page{Route: route, Template: render.TemplatePost, Context: postCtx})
	}

	return pages, nil
}

func (s *service) renderPage(pg page) ([]byte, error) {
	content, err := s.deps.Renderer.Render(pg.Template, pg.Context)
	if err != nil {
		return nil, fmt.Errorf("generator: render %s for %s: %w", pg.Template, pg.Route, err)
	}
	body := []byte(content)
	if s.snippet != "" {
		body = server.InjectSnippet(body, s.snippet)
	}
	return body, nil
}

func (s *service) writeFeeds(ctx context.Context, records []*posts.Post, generatedAt time.Time, dryRun bool, result *BuildResult) (int, error) {
	published := make([]*posts.Post, 0, len(records))
	for _, rec := range records {
		if rec.Visible(false) {
			published = append(published, rec)
		}
	}

	items := feeds.ItemsFromPosts(published, s.deps.Routes, generatedAt)
	meta := feeds.Metadata{
		Title:       s.cfg.Title,
		Description: s.cfg.Description,
		BaseURL:     s.cfg.BaseURL,
		Lang:        s.cfg.Lang,
	}

	documents := []struct {
		path        string
		contentType string
		body        string
	}{
		{"feed.xml", "application/rss+xml; charset=utf-8", feeds.BuildRSS(meta, items, generatedAt)},
		{"feed.atom.xml", "application/atom+xml; charset=utf-8", feeds.BuildAtom(meta, items, generatedAt)},
	}

	written := 0
	for _, doc := range documents {
		if !dryRun {
			if err := s.writer.WriteFile(ctx, writeFileRequest{
				Path:        doc.path,
				Content:     strings.NewReader(doc.body),
				Size:        int64(len(doc.body)),
				Category:    categoryFeed,
				ContentType: doc.contentType,
				Checksum:    contentHash([]byte(doc.body)),
			}); err != nil {
				return written, fmt.Errorf("generator: write %s: %w", doc.path, err)
			}
		}
		written++
		result.Artifacts = append(result.Artifacts, doc.path)
	}
	return written, nil
}

func (s *service) writeSitemap(ctx context.Context, pages []feeds.SitemapPage, generatedAt time.Time, dryRun bool, result *BuildResult) error {
	body := feeds.BuildSitemap(s.cfg.BaseURL, pages, generatedAt)
	if !dryRun {
		if err := s.writer.WriteFile(ctx, writeFileRequest{
			Path:        "sitemap.xml",
			Content:     strings.NewReader(body),
			Size:        int64(len(body)),
			Category:    categorySitemap,
			ContentType: "application/xml; charset=utf-8",
			Checksum:    contentHash([]byte(body)),
		}); err != nil {
			return fmt.Errorf("generator: write sitemap: %w", err)
		}
	}
	result.Sitemap = true
	result.Artifacts = append(result.Artifacts, "sitemap.xml")
	return nil
}

func (s *service) writeRobots(ctx context.Context, dryRun bool, result *BuildResult) error {
	body := feeds.BuildRobots(s.cfg.BaseURL, s.cfg.Generator.GenerateSitemap)
	if !dryRun {
		if err := s.writer.WriteFile(ctx, writeFileRequest{
			Path:        "robots.txt",
			Content:     strings.NewReader(body),
			Size:        int64(len(body)),
			Category:    categoryRobots,
			ContentType: "text/plain; charset=utf-8",
			Checksum:    contentHash([]byte(body)),
		}); err != nil {
			return fmt.Errorf("generator: write robots: %w", err)
		}
	}
	result.Robots = true
	result.Artifacts = append(result.Artifacts, "robots.txt")
	return nil
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if !s.cfg.Generator.Incremental {
		return newBuildManifest(), nil
	}
	data, err := s.writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		return nil, fmt.Errorf("generator: load manifest: %w", err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		s.logger.Warn("generator.manifest_reset", "error", err)
		return newBuildManifest(), nil
	}
	return manifest, nil
}

func (s *service) persistManifest(ctx context.Context, manifest *buildManifest) error {
	data, err := manifest.encode()
	if err != nil {
		return err
	}
	return s.writer.WriteFile(ctx, writeFileRequest{
		Path:        manifestFileName,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    contentHash(data),
	})
}

func (s *service) baseContext() render.TemplateContext {
	return render.TemplateContext{
		Site:    render.SiteMetadataFrom(s.cfg),
		Build:   render.BuildMetadata{GeneratedAt: time.Now().UTC()},
		Theme:   s.deps.Theme,
		Helpers: render.NewTemplateHelpers(s.cfg.BaseURL, s.deps.Routes),
	}
}

func (s *service) routeFor(build func() (string, error), fallback string) string {
	url, err := build()
	if err != nil || strings.TrimSpace(url) == "" {
		return fallback
	}
	return url
}

func analyticsSnippetFor(cfg site.Config) string {
	for _, name := range cfg.Middlewares {
		if strings.TrimSpace(name) == site.MiddlewareAnalytics {
			return server.AnalyticsSnippet(cfg.Analytics)
		}
	}
	return ""
}

func slugSet(slugs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug != "" {
			set[slug] = struct{}{}
		}
	}
	return set
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
