package posts

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	slugpkg "github.com/goliatone/go-slug"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrSlugRequired indicates a post could not derive a slug from front matter or filename.
var ErrSlugRequired = errors.New("posts: slug is required")

// Service exposes the read and reindex operations for blog posts.
type Service interface {
	Reindex(ctx context.Context, opts ReindexOptions) (*ReindexResult, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, opts ListOptions) ([]*Post, error)
	ListByTag(ctx context.Context, tag string, opts ListOptions) ([]*Post, error)
	Archive(ctx context.Context, opts ListOptions) ([]ArchiveYear, error)
	Tags(ctx context.Context, opts ListOptions) ([]TagCount, error)
}

// Config captures runtime behaviour toggles for the posts service.
type Config struct {
	// ContentDir is the directory (relative to the markdown service base path)
	// that holds post files.
	ContentDir string
	// Pattern limits discovered files (defaults to the markdown service pattern).
	Pattern string
	// IncludeDrafts surfaces draft posts in listings by default.
	IncludeDrafts bool
}

// Dependencies lists the collaborators required by the posts service.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	Repo     Repository
	Logger   interfaces.Logger
}

// ReindexOptions narrows the scope of a reindex run.
type ReindexOptions struct {
	// DryRun collects the diff without persisting records.
	DryRun bool
	// DeleteOrphaned removes indexed posts whose markdown file disappeared.
	DeleteOrphaned bool
}

// ReindexResult reports aggregated reindex metadata.
type ReindexResult struct {
	Indexed  int
	Updated  int
	Skipped  int
	Deleted  int
	Duration time.Duration
	Errors   []error
}

// ListOptions controls visibility filters applied to read operations.
type ListOptions struct {
	IncludeDrafts bool
	Limit         int
}

// NewService wires a posts service with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Markdown == nil {
		return nil, errors.New("posts: markdown service is required")
	}
	if deps.Repo == nil {
		return nil, errors.New("posts: repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:    cfg,
		md:     deps.Markdown,
		repo:   deps.Repo,
		logger: logger,
		now:    time.Now,
	}, nil
}

type service struct {
	cfg    Config
	md     interfaces.MarkdownService
	repo   Repository
	logger interfaces.Logger
	now    func() time.Time
}

// Reindex walks the content directory, validates every document, and upserts
// the resulting records. Documents sharing a slug collapse to the last file in
// path order; the collision is logged rather than treated as fatal.
func (s *service) Reindex(ctx context.Context, opts ReindexOptions) (*ReindexResult, error) {
	start := s.now()

	dir := strings.TrimSpace(s.cfg.ContentDir)
	if dir == "" {
		dir = "."
	}

	docs, err := s.md.LoadDirectory(ctx, dir, interfaces.LoadOptions{Pattern: s.cfg.Pattern})
	if err != nil {
		return nil, fmt.Errorf("posts reindex: %w", err)
	}

	result := &ReindexResult{}

	// Loader output is sorted by file path, so later paths win slug collisions
	// deterministically.
	bySlug := make(map[string]*interfaces.Document, len(docs))
	order := make([]string, 0, len(docs))
	for _, doc := range docs {
		slug, err := s.slugFor(doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.FilePath, err))
			continue
		}
		if prior, ok := bySlug[slug]; ok {
			logging.WithPostContext(s.logger, doc.FilePath, slug, "reindex").
				Warn("posts.reindex.duplicate_slug", "shadowed_path", prior.FilePath)
		} else {
			order = append(order, slug)
		}
		bySlug[slug] = doc
	}

	seen := make(map[string]struct{}, len(order))
	for _, slug := range order {
		doc := bySlug[slug]
		record, err := s.buildRecord(slug, doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.FilePath, err))
			continue
		}
		seen[slug] = struct{}{}

		existing, err := s.repo.GetBySlug(ctx, slug)
		if err == nil && existing.Checksum == record.Checksum {
			result.Skipped++
			continue
		}
		if err != nil {
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				result.Errors = append(result.Errors, err)
				continue
			}
		}

		if opts.DryRun {
			if existing != nil {
				result.Updated++
			} else {
				result.Indexed++
			}
			continue
		}

		if _, err := s.repo.Upsert(ctx, record); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Indexed++
		}
	}

	if opts.DeleteOrphaned {
		deleted, errs := s.deleteOrphans(ctx, seen, opts.DryRun)
		result.Deleted = deleted
		result.Errors = append(result.Errors, errs...)
	}

	result.Duration = s.now().Sub(start)
	s.logger.Info("posts.reindex.completed",
		"indexed", result.Indexed,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"deleted", result.Deleted,
		"error_count", len(result.Errors),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	normalized, err := slugpkg.Normalize(slug)
	if err != nil {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return s.repo.GetBySlug(ctx, normalized)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := records[:0:0]
	for _, rec := range records {
		if rec.Visible(opts.IncludeDrafts || s.cfg.IncludeDrafts) {
			visible = append(visible, rec)
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].PublishedAt.Equal(visible[j].PublishedAt) {
			return visible[i].Slug < visible[j].Slug
		}
		return visible[i].PublishedAt.After(visible[j].PublishedAt)
	})

	if opts.Limit > 0 && len(visible) > opts.Limit {
		visible = visible[:opts.Limit]
	}
	return visible, nil
}

func (s *service) ListByTag(ctx context.Context, tag string, opts ListOptions) ([]*Post, error) {
	needle := strings.ToLower(strings.TrimSpace(tag))
	if needle == "" {
		return nil, nil
	}

	records, err := s.List(ctx, ListOptions{IncludeDrafts: opts.IncludeDrafts})
	if err != nil {
		return nil, err
	}

	matched := records[:0:0]
	for _, rec := range records {
		for _, candidate := range rec.Tags {
			if strings.ToLower(strings.TrimSpace(candidate)) == needle {
				matched = append(matched, rec)
				break
			}
		}
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *service) Archive(ctx context.Context, opts ListOptions) ([]ArchiveYear, error) {
	records, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	byYear := map[int][]*Post{}
	for _, rec := range records {
		year := rec.PublishedAt.Year()
		byYear[year] = append(byYear[year], rec)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]ArchiveYear, 0, len(years))
	for _, year := range years {
		out = append(out, ArchiveYear{Year: year, Posts: byYear[year]})
	}
	return out, nil
}

func (s *service) Tags(ctx context.Context, opts ListOptions) ([]TagCount, error) {
	records, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, rec := range records {
		for _, tag := range rec.Tags {
			normalized := strings.ToLower(strings.TrimSpace(tag))
			if normalized == "" {
				continue
			}
			counts[normalized]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Tag < out[j].Tag
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

func (s *service) slugFor(doc *interfaces.Document) (string, error) {
	source := strings.TrimSpace(doc.FrontMatter.Slug)
	if source == "" {
		base := filepath.Base(doc.FilePath)
		source = strings.TrimSuffix(base, filepath.Ext(base))
	}
	normalized, err := slugpkg.Normalize(source)
	if err != nil || strings.TrimSpace(normalized) == "" {
		return "", ErrSlugRequired
	}
	return normalized, nil
}

// buildRecord validates the document front matter and projects it into a Post.
// A missing date falls back to the file modification time so legacy posts
// without a publish_date stay publishable.
func (s *service) buildRecord(slug string, doc *interfaces.Document) (*Post, error) {
	input := recordInput{
		Title:    doc.FrontMatter.Title,
		BodyHTML: string(doc.BodyHTML),
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	publishedAt := doc.FrontMatter.Date
	if publishedAt.IsZero() {
		publishedAt = doc.LastModified
	}

	record := &Post{
		ID:          identity.PostUUID(slug),
		Slug:        slug,
		Title:       strings.TrimSpace(doc.FrontMatter.Title),
		Tags:        normalizeTags(doc.FrontMatter.Tags),
		Draft:       doc.FrontMatter.Draft,
		PublishedAt: publishedAt.UTC(),
		FilePath:    doc.FilePath,
		Checksum:    hex.EncodeToString(doc.Checksum),
		BodyHTML:    string(doc.BodyHTML),
		UpdatedAt:   s.now().UTC(),
	}
	if summary := strings.TrimSpace(doc.FrontMatter.Summary); summary != "" {
		record.Summary = &summary
	}
	return record, nil
}

func (s *service) deleteOrphans(ctx context.Context, seen map[string]struct{}, dryRun bool) (int, []error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return 0, []error{err}
	}

	deleted := 0
	var errs []error
	for _, rec := range records {
		if _, ok := seen[rec.Slug]; ok {
			continue
		}
		if dryRun {
			deleted++
			continue
		}
		if err := s.repo.DeleteBySlug(ctx, rec.Slug); err != nil {
			errs = append(errs, err)
			continue
		}
		logging.WithPostContext(s.logger, rec.FilePath, rec.Slug, "reindex").
			Info("posts.reindex.deleted_orphan")
		deleted++
	}
	return deleted, errs
}

type recordInput struct {
	Title    string
	BodyHTML string
}

func (in recordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.posts.title_required", "post title is required")
			}
			return nil
		})),
	)
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
