// Package bootstrap shares module construction between the blog CLIs.
package bootstrap

import (
	"fmt"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures CLI-level overrides applied on top of the config file.
type Options struct {
	ConfigPath    string
	ContentDir    string
	OutputDir     string
	Addr          string
	BaseURL       string
	IncludeDrafts *bool
	LogLevel      string
	Generator     bool
}

// Module wraps the blog module with the loggers the CLIs report through.
type Module struct {
	Blog   *blog.Module
	Logger interfaces.Logger
}

// BuildModule loads the configuration file, applies overrides, and
// constructs the blog module.
func BuildModule(opts Options, diOpts ...blog.Option) (*Module, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if out := strings.TrimSpace(opts.OutputDir); out != "" {
		cfg.Generator.OutputDir = out
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.Server.Addr = addr
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = base
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if opts.IncludeDrafts != nil {
		cfg.Content.IncludeDrafts = *opts.IncludeDrafts
	}
	if opts.Generator {
		cfg.Generator.Enabled = true
	}

	module, err := blog.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}

	return &Module{
		Blog:   module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "blog.cli"),
	}, nil
}

func loadConfig(path string) (blog.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return blog.Config{}, fmt.Errorf("config path is required")
	}
	cfg, err := blog.LoadConfig(path)
	if err != nil {
		return blog.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// SplitSlugs parses a comma separated slug filter.
func SplitSlugs(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
