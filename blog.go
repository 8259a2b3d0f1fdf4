// Package blog is a file-backed personal blog engine. Markdown posts with
// front matter are indexed into a queryable store, rendered through themed
// templates, and published either by the embedded HTTP server or as a static
// directory tree.
package blog

import (
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/server"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// PostService exports the post index contract for consumers of the blog package.
type PostService = posts.Service

// Post exports the indexed post record.
type Post = posts.Post

// ReindexOptions exports the reindex knobs.
type ReindexOptions = posts.ReindexOptions

// ReindexResult exports the reindex outcome.
type ReindexResult = posts.ReindexResult

// ListOptions exports listing filters.
type ListOptions = posts.ListOptions

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the generator build knobs.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build outcome.
type BuildResult = generator.BuildResult

// MarkdownService exports the markdown pipeline contract.
type MarkdownService = interfaces.MarkdownService

// Option re-exports container options so embedders can override collaborators.
type Option = di.Option

// Module is the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module from the provided configuration and optional
// dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying dependency container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Config returns the normalized site configuration.
func (m *Module) Config() Config {
	return m.container.Config()
}

// Posts returns the post index service.
func (m *Module) Posts() PostService {
	return m.container.Posts()
}

// Markdown returns the markdown pipeline.
func (m *Module) Markdown() MarkdownService {
	return m.container.Markdown()
}

// Generator returns the static site generator.
func (m *Module) Generator() GeneratorService {
	return m.container.Generator()
}

// Server returns the embedded HTTP server.
func (m *Module) Server() *server.Server {
	return m.container.Server()
}

// Routes returns the site-relative route table.
func (m *Module) Routes() *routes.Table {
	return m.container.Routes()
}

// Logger returns a module logger scoped to the given name.
func (m *Module) Logger(name string) interfaces.Logger {
	return m.container.LoggerProvider().GetLogger(name)
}

// Close releases resources owned by the module, such as a self-opened
// database handle.
func (m *Module) Close() error {
	return m.container.Close()
}
