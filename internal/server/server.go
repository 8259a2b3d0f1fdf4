// Package server exposes the blog over HTTP. Pages render through the same
// template engine and route table the static generator uses, so the served
// site matches a generated build.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/routes"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrPostsServiceRequired indicates the server was built without a posts service.
var ErrPostsServiceRequired = errors.New("server: posts service is required")

// ErrRendererRequired indicates the server was built without a template renderer.
var ErrRendererRequired = errors.New("server: template renderer is required")

// ErrRouteTableRequired indicates the server was built without a route table.
var ErrRouteTableRequired = errors.New("server: route table is required")

// Dependencies carries the collaborators the server needs.
type Dependencies struct {
	Posts    posts.Service
	Renderer interfaces.TemplateRenderer
	Routes   *routes.Table
	Theme    render.ThemeContext
	Logger   interfaces.Logger

	// Canonical builds base-URL-qualified links for feed items, where
	// relative URLs are not valid. Derived from the configured base URL
	// when unset.
	Canonical *routes.Table

	// AssetsDir, when set, is served under /assets/. It points at the active
	// theme's asset directory.
	AssetsDir string
}

// Server serves the blog pages, feeds, and sitemap.
type Server struct {
	cfg           site.Config
	deps          Dependencies
	logger        interfaces.Logger
	theme         render.ThemeContext
	assetsDir     string
	includeDrafts bool
	httpServer    *http.Server
}

// New validates dependencies and assembles the handler with the configured
// middleware chain applied.
func New(cfg site.Config, deps Dependencies) (*Server, error) {
	if deps.Posts == nil {
		return nil, ErrPostsServiceRequired
	}
	if deps.Renderer == nil {
		return nil, ErrRendererRequired
	}
	if deps.Routes == nil {
		return nil, ErrRouteTableRequired
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Canonical == nil {
		canonical, err := routes.NewTable(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("server: canonical routes: %w", err)
		}
		deps.Canonical = canonical
	}

	srv := &Server{
		cfg:           cfg,
		deps:          deps,
		logger:        deps.Logger,
		theme:         deps.Theme,
		assetsDir:     deps.AssetsDir,
		includeDrafts: cfg.Content.IncludeDrafts,
	}

	chain, err := BuildChain(cfg, deps.Logger)
	if err != nil {
		return nil, err
	}

	srv.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      Apply(srv.routes(), chain),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return srv, nil
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then drains connections within the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listen", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen on %s: %w", s.httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http.shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	<-errCh
	return nil
}
