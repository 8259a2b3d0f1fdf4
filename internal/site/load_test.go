package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `{
  "title": "Field Notes",
  "author": "Jordan Mercer",
  "links": [{"title": "GitHub", "url": "https://github.com/jordanmercer"}],
  "middlewares": ["request_log", "analytics"],
  "analytics": {"provider": "plausible", "tracking_id": "fieldnotes.example.com"}
}`

func TestParseAppliesDefaultsAndValidates(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.Lang != "en" {
		t.Fatalf("expected defaults applied, lang = %q", cfg.Lang)
	}
	if cfg.Analytics.TrackingID != "fieldnotes.example.com" {
		t.Fatalf("unexpected tracking id %q", cfg.Analytics.TrackingID)
	}
	if len(cfg.Middlewares) != 2 {
		t.Fatalf("expected configured middlewares preserved, got %v", cfg.Middlewares)
	}
}

func TestParseRejectsUnknownTopLevelField(t *testing.T) {
	raw := `{"title": "x", "author": "y", "widgets": []}`
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected schema error for unknown field")
	}
}

func TestParseRejectsInvalidMiddlewareName(t *testing.T) {
	raw := `{"title": "x", "author": "y", "middlewares": ["teleport"]}`
	_, err := Parse([]byte(raw))
	if err == nil {
		t.Fatal("expected schema error for unknown middleware")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Fatalf("expected schema diagnostics, got %v", err)
	}
}

func TestParseServerTimeoutStrings(t *testing.T) {
	raw := `{
  "title": "Field Notes",
  "author": "Jordan Mercer",
  "server": {"addr": ":9090", "read_timeout": "10s", "write_timeout": 30, "shutdown_timeout": "1m30s"}
}`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Fatalf("expected bare numbers read as seconds, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 90*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.Server.ShutdownTimeout)
	}
}

func TestParseRejectsMalformedTimeout(t *testing.T) {
	raw := `{"title": "x", "author": "y", "server": {"read_timeout": "fast"}}`
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Title != "Field Notes" {
		t.Fatalf("unexpected title %q", cfg.Title)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
