package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/feeds"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /posts/{slug}", s.handlePost)
	mux.HandleFunc("GET /archive", s.handleArchive)
	mux.HandleFunc("GET /tags/{tag}", s.handleTag)
	mux.HandleFunc("GET /feed.xml", s.handleFeed)
	mux.HandleFunc("GET /feed.atom.xml", s.handleAtom)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	if s.assetsDir != "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.assetsDir))))
	}
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Posts.List(r.Context(), posts.ListOptions{IncludeDrafts: s.includeDrafts})
	if err != nil {
		s.renderError(w, err)
		return
	}

	ctx := s.baseContext()
	ctx.Posts = records
	s.renderPage(w, render.TemplateIndex, ctx)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	record, err := s.deps.Posts.GetBySlug(r.Context(), slug)
	if err != nil {
		s.renderError(w, err)
		return
	}
	if !record.Visible(s.includeDrafts) {
		s.renderError(w, &posts.NotFoundError{Resource: "post", Key: slug})
		return
	}

	ctx := s.baseContext()
	ctx.Post = record
	s.renderPage(w, render.TemplatePost, ctx)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	years, err := s.deps.Posts.Archive(r.Context(), posts.ListOptions{IncludeDrafts: s.includeDrafts})
	if err != nil {
		s.renderError(w, err)
		return
	}

	ctx := s.baseContext()
	ctx.Archive = years
	s.renderPage(w, render.TemplateArchive, ctx)
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	records, err := s.deps.Posts.ListByTag(r.Context(), tag, posts.ListOptions{IncludeDrafts: s.includeDrafts})
	if err != nil {
		s.renderError(w, err)
		return
	}

	ctx := s.baseContext()
	ctx.Posts = records
	ctx.Tag = tag
	s.renderPage(w, render.TemplateTag, ctx)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedItems(r)
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(feeds.BuildRSS(s.feedMetadata(), items, time.Now().UTC())))
}

func (s *Server) handleAtom(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedItems(r)
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Write([]byte(feeds.BuildAtom(s.feedMetadata(), items, time.Now().UTC())))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Posts.List(r.Context(), posts.ListOptions{IncludeDrafts: s.includeDrafts})
	if err != nil {
		s.renderError(w, err)
		return
	}

	pages := make([]feeds.SitemapPage, 0, len(records)+2)
	pages = append(pages,
		feeds.SitemapPage{Route: routeOr(s.deps.Routes.Home, "/")},
		feeds.SitemapPage{Route: routeOr(s.deps.Routes.Archive, "/archive")},
	)
	for _, rec := range records {
		route := "/posts/" + rec.Slug
		if url, err := s.deps.Routes.Post(rec.Slug); err == nil {
			route = url
		}
		pages = append(pages, feeds.SitemapPage{Route: route, LastModified: rec.UpdatedAt})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(feeds.BuildSitemap(s.cfg.BaseURL, pages, time.Now().UTC())))
}

func (s *Server) feedItems(r *http.Request) ([]feeds.Item, error) {
	records, err := s.deps.Posts.List(r.Context(), posts.ListOptions{IncludeDrafts: false})
	if err != nil {
		return nil, err
	}
	return feeds.ItemsFromPosts(records, s.deps.Canonical, time.Now().UTC()), nil
}

func (s *Server) feedMetadata() feeds.Metadata {
	return feeds.Metadata{
		Title:       s.cfg.Title,
		Description: s.cfg.Description,
		BaseURL:     s.cfg.BaseURL,
		Lang:        s.cfg.Lang,
	}
}

func (s *Server) baseContext() render.TemplateContext {
	return render.TemplateContext{
		Site:    render.SiteMetadataFrom(s.cfg),
		Build:   render.BuildMetadata{GeneratedAt: time.Now().UTC()},
		Theme:   s.theme,
		Helpers: render.NewTemplateHelpers("", s.deps.Routes),
	}
}

func (s *Server) renderPage(w http.ResponseWriter, template string, ctx render.TemplateContext) {
	page, err := s.deps.Renderer.Render(template, ctx)
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	var notFound *posts.NotFoundError
	if errors.As(err, &notFound) {
		s.logger.Debug("http.not_found", "resource", notFound.Resource, "key", notFound.Key)
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}

	s.logger.Error("http.handler_error", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func routeOr(build func() (string, error), fallback string) string {
	url, err := build()
	if err != nil || strings.TrimSpace(url) == "" {
		return fallback
	}
	return url
}
