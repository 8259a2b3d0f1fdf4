package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemWriteAndRead(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, root)
	ctx := context.Background()

	if _, err := provider.Exec(ctx, OpWrite, "posts/hello/index.html", strings.NewReader("<html></html>")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "posts", "hello", "index.html"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Fatalf("unexpected content %q", data)
	}

	rows, err := provider.Query(ctx, OpRead, "posts/hello/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatal("expected a row")
	}
	var got []byte
	if err := rows.Scan(&got); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if string(got) != "<html></html>" {
		t.Fatalf("unexpected scanned content %q", got)
	}
	if rows.Next() {
		t.Fatal("expected a single row")
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestFilesystemReadMissingFile(t *testing.T) {
	provider := NewFilesystemProvider(t.TempDir(), "")

	rows, err := provider.Query(context.Background(), OpRead, "missing.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatal("expected nil rows for missing file")
	}
}

func TestFilesystemEnsureDirAndRemove(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, root)
	ctx := context.Background()

	if _, err := provider.Exec(ctx, OpEnsureDir, "assets/fonts"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "assets", "fonts"))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v / %v", info, err)
	}

	if _, err := provider.Exec(ctx, OpWrite, "assets/fonts/a.woff2", strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, OpRemove, "assets"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "assets")); !os.IsNotExist(err) {
		t.Fatalf("expected subtree removed, got %v", err)
	}

	// Removing something already gone is not an error.
	if _, err := provider.Exec(ctx, OpRemove, "assets"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestFilesystemTrimsBasePrefix(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, "public")

	if _, err := provider.Exec(context.Background(), OpWrite, "public/index.html", strings.NewReader("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		t.Fatalf("expected base prefix trimmed: %v", err)
	}
}

func TestFilesystemTransaction(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, root)

	err := provider.Transaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.Exec(context.Background(), OpWrite, "index.html", strings.NewReader("tx")); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		t.Fatalf("expected file written: %v", err)
	}
}
