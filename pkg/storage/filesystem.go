package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Artifact operations understood by filesystem-backed providers. The static
// generator issues these through the Provider contract so builds can target
// any storage backend.
const (
	OpEnsureDir = "artifact.ensure_dir"
	OpWrite     = "artifact.write"
	OpRead      = "artifact.read"
	OpRemove    = "artifact.remove"
)

// NewFilesystemProvider returns a Provider that maps artifact operations onto
// a directory tree rooted at root. The base argument should match the
// generator output directory so duplicated prefixes are trimmed from paths.
func NewFilesystemProvider(root, base string) Provider {
	base = filepath.ToSlash(filepath.Clean(base))
	if base == "." {
		base = ""
	}
	return &filesystemProvider{root: root, base: base}
}

type filesystemProvider struct {
	root string
	base string
}

func (p *filesystemProvider) Query(_ context.Context, query string, args ...any) (Rows, error) {
	if query != OpRead || len(args) == 0 {
		return nil, nil
	}
	target := p.normalizePath(args[0])
	data, err := os.ReadFile(p.abs(target))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (p *filesystemProvider) Exec(_ context.Context, query string, args ...any) (Result, error) {
	switch query {
	case OpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: ensure_dir requires path")
		}
		target := p.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(p.abs(target), 0o755)
	case OpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("storage: write requires path and reader")
		}
		target := p.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("storage: write expects io.Reader content")
		}
		full := p.abs(target)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: remove requires path")
		}
		target := p.normalizePath(args[0])
		err := os.RemoveAll(p.abs(target))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (p *filesystemProvider) Transaction(_ context.Context, fn func(tx Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{provider: p})
}

func (p *filesystemProvider) abs(rel string) string {
	if rel == "" {
		return p.root
	}
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

func (p *filesystemProvider) normalizePath(arg any) string {
	target, _ := arg.(string)
	target = filepath.ToSlash(filepath.Clean(target))
	if target == "." {
		return ""
	}
	if p.base != "" && strings.HasPrefix(target, p.base) {
		target = strings.TrimPrefix(target, p.base)
		target = strings.TrimPrefix(target, "/")
	}
	return target
}

type filesystemTx struct {
	provider *filesystemProvider
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return tx.provider.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return tx.provider.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(Transaction) error) error {
	return errors.New("storage: nested transactions not supported")
}

func (tx *filesystemTx) Commit() error { return nil }

func (tx *filesystemTx) Rollback() error { return nil }

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type fileRows struct {
	data []byte
	read bool
}

func (r *fileRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("storage: scan requires destination")
	}
	target, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("storage: unsupported scan destination %T", dest[0])
	}
	*target = append([]byte(nil), r.data...)
	return nil
}

func (r *fileRows) Close() error { return nil }
