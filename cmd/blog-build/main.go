package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-blog/cmd/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/commands/postscmd"
	"github.com/goliatone/go-blog/internal/commands/staticcmd"
	"github.com/goliatone/go-blog/internal/generator"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("blog build: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("blog-build", flag.ExitOnError)
	configPath := fs.String("config", "blog.json", "Path to the site configuration file")
	contentDir := fs.String("content-dir", "", "Override the markdown content directory")
	outputDir := fs.String("output", "", "Override the static output directory")
	baseURL := fs.String("base-url", "", "Override the canonical base URL")
	slugs := fs.String("slugs", "", "Comma separated slug filter; shared pages always rebuild")
	drafts := fs.Bool("drafts", false, "Include draft posts in the build")
	dryRun := fs.Bool("dry-run", false, "Render everything without writing artifacts")
	clean := fs.Bool("clean", false, "Remove existing output before building")
	cleanOnly := fs.Bool("clean-only", false, "Remove existing output and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		ContentDir: *contentDir,
		OutputDir:  *outputDir,
		BaseURL:    *baseURL,
		Generator:  true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Blog.Close()

	ctx := context.Background()

	if *cleanOnly {
		handler := staticcmd.NewCleanSiteHandler(module.Blog.Generator(), module.Logger)
		if err := handler.Execute(ctx, staticcmd.CleanSiteCommand{}); err != nil {
			return fmt.Errorf("clean site: %w", err)
		}
		fmt.Fprintln(os.Stdout, "output cleaned")
		return nil
	}

	if *clean {
		handler := staticcmd.NewCleanSiteHandler(module.Blog.Generator(), module.Logger)
		if err := handler.Execute(ctx, staticcmd.CleanSiteCommand{}); err != nil {
			return fmt.Errorf("clean site: %w", err)
		}
	}

	reindex := postscmd.NewReindexHandler(module.Blog.Posts(), module.Logger)
	if err := reindex.Execute(ctx, postscmd.ReindexPostsCommand{DeleteOrphaned: true}); err != nil {
		return fmt.Errorf("reindex posts: %w", err)
	}

	var result *generator.BuildResult
	build := staticcmd.NewBuildSiteHandler(module.Blog.Generator(), module.Logger)
	err = build.Execute(ctx, staticcmd.BuildSiteCommand{
		Slugs:          bootstrap.SplitSlugs(*slugs),
		DryRun:         *dryRun,
		IncludeDrafts:  *drafts,
		ResultCallback: func(r *generator.BuildResult) { result = r },
	})
	if err != nil {
		return fmt.Errorf("build site: %w", err)
	}

	if result != nil {
		fmt.Fprintf(os.Stdout, "built %d pages (%d skipped, %d assets) in %s\n",
			result.PagesRendered, result.PagesSkipped, result.AssetsCopied, result.Duration)
	}
	return nil
}
