package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-blog/cmd/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/commands/postscmd"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runServe(os.Args[1:]); err != nil {
		log.Fatalf("blog serve: %v", err)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("blog-serve", flag.ExitOnError)
	configPath := fs.String("config", "blog.json", "Path to the site configuration file")
	contentDir := fs.String("content-dir", "", "Override the markdown content directory")
	addr := fs.String("addr", "", "Override the listen address")
	drafts := fs.Bool("drafts", false, "Serve draft posts")
	logLevel := fs.String("log-level", "", "Override the configured log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := bootstrap.Options{
		ConfigPath: *configPath,
		ContentDir: *contentDir,
		Addr:       *addr,
		LogLevel:   *logLevel,
	}
	if *drafts {
		include := true
		opts.IncludeDrafts = &include
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Blog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reindex := postscmd.NewReindexHandler(module.Blog.Posts(), module.Logger)
	if err := reindex.Execute(ctx, postscmd.ReindexPostsCommand{DeleteOrphaned: true}); err != nil {
		return fmt.Errorf("reindex posts: %w", err)
	}

	return module.Blog.Server().Start(ctx)
}
