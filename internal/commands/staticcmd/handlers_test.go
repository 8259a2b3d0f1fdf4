package staticcmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/generator"
)

type fakeGenerator struct {
	buildOpts generator.BuildOptions
	result    *generator.BuildResult
	buildErr  error
	cleaned   bool
	cleanErr  error
}

func (f *fakeGenerator) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	f.buildOpts = opts
	return f.result, f.buildErr
}

func (f *fakeGenerator) Clean(context.Context) error {
	f.cleaned = true
	return f.cleanErr
}

func TestBuildSiteHandlerForwardsOptions(t *testing.T) {
	svc := &fakeGenerator{result: &generator.BuildResult{PagesRendered: 4}}
	handler := NewBuildSiteHandler(svc, nil)

	var received *generator.BuildResult
	err := handler.Execute(context.Background(), BuildSiteCommand{
		Slugs:          []string{"hello-world"},
		DryRun:         true,
		IncludeDrafts:  true,
		ResultCallback: func(result *generator.BuildResult) { received = result },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(svc.buildOpts.Slugs) != 1 || svc.buildOpts.Slugs[0] != "hello-world" {
		t.Fatalf("expected slugs forwarded, got %+v", svc.buildOpts)
	}
	if !svc.buildOpts.DryRun || !svc.buildOpts.IncludeDrafts {
		t.Fatalf("expected flags forwarded, got %+v", svc.buildOpts)
	}
	if received == nil || received.PagesRendered != 4 {
		t.Fatalf("expected result callback, got %+v", received)
	}
}

func TestBuildSiteCommandRejectsEmptySlug(t *testing.T) {
	svc := &fakeGenerator{result: &generator.BuildResult{}}
	handler := NewBuildSiteHandler(svc, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{Slugs: []string{"ok", "  "}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestBuildSiteHandlerWithoutService(t *testing.T) {
	handler := NewBuildSiteHandler(nil, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if err == nil || !errors.Is(err, generator.ErrGeneratorDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestCleanSiteHandler(t *testing.T) {
	svc := &fakeGenerator{}
	handler := NewCleanSiteHandler(svc, nil)

	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !svc.cleaned {
		t.Fatal("expected clean invoked")
	}

	svc.cleanErr = errors.New("remove failed")
	err := handler.Execute(context.Background(), CleanSiteCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}
