package generator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryFeed     writeCategory = "feed"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryAsset    writeCategory = "asset"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
}

// artifactWriter abstracts storage provider specifics for build outputs.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

func newArtifactWriter(provider interfaces.StorageProvider) artifactWriter {
	if provider == nil {
		return noopWriter{}
	}
	return &storageWriter{provider: provider}
}

type storageWriter struct {
	provider interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	_, err := w.provider.Exec(ctx, storage.OpEnsureDir, path)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Checksum,
	}
	_, err := w.provider.Exec(ctx, storage.OpWrite, args...)
	return err
}

func (w *storageWriter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rows, err := w.provider.Query(ctx, storage.OpRead, path)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func (w *storageWriter) Remove(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	_, err := w.provider.Exec(ctx, storage.OpRemove, path)
	return err
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func (noopWriter) ReadFile(context.Context, string) ([]byte, error) { return nil, nil }

func (noopWriter) Remove(context.Context, string) error { return nil }
