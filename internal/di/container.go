// Package di assembles the blog runtime from its configuration. Every
// collaborator can be overridden through options, which keeps tests and
// embedders in control of storage, rendering, and logging.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/server"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

// Container holds the wired blog services.
type Container struct {
	cfg site.Config

	loggerProvider interfaces.LoggerProvider
	db             *bun.DB
	ownsDB         bool
	postRepo       posts.Repository
	markdownSvc    interfaces.MarkdownService
	postsSvc       posts.Service
	renderer       interfaces.TemplateRenderer
	themeSelector  *render.ThemeSelector
	themeContext   render.ThemeContext
	themeAssetsDir string
	siteRoutes     *routes.Table
	canonical      *routes.Table
	artifacts      interfaces.StorageProvider
	generatorSvc   generator.Service
	httpServer     *server.Server

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
}

// Option overrides a container collaborator before wiring runs.
type Option func(*Container)

// WithLoggerProvider injects the logger provider used for module loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) { c.loggerProvider = provider }
}

// WithBunDB injects an existing bun database handle. The container will not
// close injected handles.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

// WithPostRepository overrides the post index repository.
func WithPostRepository(repo posts.Repository) Option {
	return func(c *Container) { c.postRepo = repo }
}

// WithMarkdownService overrides the markdown pipeline.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) { c.markdownSvc = svc }
}

// WithRenderer overrides the template renderer.
func WithRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) { c.renderer = renderer }
}

// WithArtifactStorage overrides the storage provider the generator writes
// build artifacts through.
func WithArtifactStorage(provider interfaces.StorageProvider) Option {
	return func(c *Container) { c.artifacts = provider }
}

// WithCache enables read-through caching on the bun post repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// NewContainer validates the configuration and wires the runtime.
func NewContainer(cfg site.Config, opts ...Option) (*Container, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureContent(); err != nil {
		return nil, err
	}
	if err := c.configureRendering(); err != nil {
		return nil, err
	}
	if err := c.configureRoutes(); err != nil {
		return nil, err
	}
	if err := c.configureGenerator(); err != nil {
		return nil, err
	}
	if err := c.configureServer(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.cfg.Logging.Level,
		Format:    c.cfg.Logging.Format,
		AddSource: c.cfg.Logging.AddSource,
		Focus:     c.cfg.Logging.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: logging: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

// configureStorage picks the post index backend. A SQLite DSN wires bun with
// an auto-created schema; anything else falls back to the in-memory index,
// which is rebuilt on every reindex anyway.
func (c *Container) configureStorage() error {
	if c.postRepo != nil {
		return nil
	}

	dsn := strings.TrimSpace(c.cfg.Storage.DSN)
	driver := strings.ToLower(strings.TrimSpace(c.cfg.Storage.Driver))

	if c.db == nil && dsn != "" && (driver == "" || driver == "sqlite" || driver == "sqlite3") {
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("di: open sqlite index: %w", err)
		}
		c.db = bun.NewDB(sqldb, sqlitedialect.New())
		c.ownsDB = true
	}

	if c.db != nil {
		if err := ensurePostSchema(context.Background(), c.db); err != nil {
			return err
		}
		if c.cacheService != nil && c.keySerializer != nil {
			c.postRepo = posts.NewBunPostRepositoryWithCache(c.db, c.cacheService, c.keySerializer)
		} else {
			c.postRepo = posts.NewBunPostRepository(c.db)
		}
		return nil
	}

	c.postRepo = posts.NewMemoryPostRepository()
	return nil
}

func (c *Container) configureContent() error {
	if c.markdownSvc == nil {
		svc, err := markdown.NewService(markdown.Config{
			BasePath:  c.cfg.Content.Dir,
			Pattern:   c.cfg.Content.Pattern,
			Recursive: c.cfg.Content.Recursive,
			Parser:    c.cfg.Markdown.ParseOptions(),
		}, nil)
		if err != nil {
			return fmt.Errorf("di: markdown: %w", err)
		}
		c.markdownSvc = svc
	}

	svc, err := posts.NewService(posts.Config{
		ContentDir:    ".",
		Pattern:       c.cfg.Content.Pattern,
		IncludeDrafts: c.cfg.Content.IncludeDrafts,
	}, posts.Dependencies{
		Markdown: c.markdownSvc,
		Repo:     c.postRepo,
		Logger:   logging.PostsLogger(c.loggerProvider),
	})
	if err != nil {
		return fmt.Errorf("di: posts: %w", err)
	}
	c.postsSvc = svc
	return nil
}

func (c *Container) configureRendering() error {
	c.themeSelector = render.NewThemeSelector(render.ThemeConfig{
		BasePath:     c.cfg.Theme.BasePath,
		DefaultTheme: c.cfg.Theme.DefaultTheme,
		Variant:      c.cfg.Theme.Variant,
	}, nil)

	selection, err := c.themeSelector.Selection()
	if err != nil {
		return fmt.Errorf("di: theme: %w", err)
	}
	c.themeContext = render.BuildThemeContext(selection)

	themeDir := c.themeSelector.ThemePath(selection.Theme)
	c.themeAssetsDir = filepath.Join(themeDir, "assets")

	if c.renderer == nil {
		engine, err := render.NewEngine(os.DirFS(themeDir), "*.html")
		if err != nil {
			return fmt.Errorf("di: templates: %w", err)
		}
		c.renderer = engine
	}
	return nil
}

func (c *Container) configureRoutes() error {
	relative, err := routes.NewTable("")
	if err != nil {
		return fmt.Errorf("di: routes: %w", err)
	}
	canonical, err := routes.NewTable(c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("di: canonical routes: %w", err)
	}
	c.siteRoutes = relative
	c.canonical = canonical
	return nil
}

func (c *Container) configureGenerator() error {
	if !c.cfg.Generator.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return nil
	}

	if c.artifacts == nil {
		c.artifacts = storage.NewFilesystemProvider(c.cfg.Generator.OutputDir, c.cfg.Generator.OutputDir)
	}

	svc, err := generator.NewService(c.cfg, generator.Dependencies{
		Posts:          c.postsSvc,
		Renderer:       c.renderer,
		Routes:         c.canonical,
		Storage:        c.artifacts,
		Theme:          c.themeContext,
		ThemeAssetsDir: c.themeAssetsDir,
		Logger:         logging.GeneratorLogger(c.loggerProvider),
	})
	if err != nil {
		return fmt.Errorf("di: generator: %w", err)
	}
	c.generatorSvc = svc
	return nil
}

func (c *Container) configureServer() error {
	srv, err := server.New(c.cfg, server.Dependencies{
		Posts:     c.postsSvc,
		Renderer:  c.renderer,
		Routes:    c.siteRoutes,
		Canonical: c.canonical,
		Theme:     c.themeContext,
		Logger:    logging.ServerLogger(c.loggerProvider),
		AssetsDir: c.themeAssetsDir,
	})
	if err != nil {
		return fmt.Errorf("di: server: %w", err)
	}
	c.httpServer = srv
	return nil
}

// ensurePostSchema creates the posts table on first use so a fresh SQLite
// file works without a migration step.
func ensurePostSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*posts.Post)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("di: create posts table: %w", err)
	}
	return nil
}

// Config returns the normalized site configuration.
func (c *Container) Config() site.Config { return c.cfg }

// LoggerProvider exposes the module logger factory.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Posts returns the post index service.
func (c *Container) Posts() posts.Service { return c.postsSvc }

// Markdown returns the markdown pipeline.
func (c *Container) Markdown() interfaces.MarkdownService { return c.markdownSvc }

// Renderer returns the template renderer.
func (c *Container) Renderer() interfaces.TemplateRenderer { return c.renderer }

// Routes returns the site-relative route table.
func (c *Container) Routes() *routes.Table { return c.siteRoutes }

// CanonicalRoutes returns the base-URL-qualified route table.
func (c *Container) CanonicalRoutes() *routes.Table { return c.canonical }

// Theme returns the resolved theme context.
func (c *Container) Theme() render.ThemeContext { return c.themeContext }

// Generator returns the static site generator.
func (c *Container) Generator() generator.Service { return c.generatorSvc }

// Server returns the HTTP server.
func (c *Container) Server() *server.Server { return c.httpServer }

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	if c.ownsDB && c.db != nil {
		return c.db.Close()
	}
	return nil
}
