package postscmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/posts"
)

type fakePostsService struct {
	lastOpts posts.ReindexOptions
	result   *posts.ReindexResult
	err      error
}

func (f *fakePostsService) Reindex(_ context.Context, opts posts.ReindexOptions) (*posts.ReindexResult, error) {
	f.lastOpts = opts
	return f.result, f.err
}

func (f *fakePostsService) GetBySlug(context.Context, string) (*posts.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePostsService) List(context.Context, posts.ListOptions) ([]*posts.Post, error) {
	return nil, nil
}

func (f *fakePostsService) ListByTag(context.Context, string, posts.ListOptions) ([]*posts.Post, error) {
	return nil, nil
}

func (f *fakePostsService) Archive(context.Context, posts.ListOptions) ([]posts.ArchiveYear, error) {
	return nil, nil
}

func (f *fakePostsService) Tags(context.Context, posts.ListOptions) ([]posts.TagCount, error) {
	return nil, nil
}

func TestReindexHandlerForwardsOptions(t *testing.T) {
	svc := &fakePostsService{result: &posts.ReindexResult{Indexed: 3}}
	handler := NewReindexHandler(svc, nil)

	var received *posts.ReindexResult
	err := handler.Execute(context.Background(), ReindexPostsCommand{
		DryRun:         true,
		DeleteOrphaned: true,
		ResultCallback: func(result *posts.ReindexResult) { received = result },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !svc.lastOpts.DryRun || !svc.lastOpts.DeleteOrphaned {
		t.Fatalf("expected options forwarded, got %+v", svc.lastOpts)
	}
	if received == nil || received.Indexed != 3 {
		t.Fatalf("expected result callback, got %+v", received)
	}
}

func TestReindexHandlerWrapsServiceError(t *testing.T) {
	svc := &fakePostsService{err: errors.New("walk failed")}
	handler := NewReindexHandler(svc, nil)

	err := handler.Execute(context.Background(), ReindexPostsCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestReindexHandlerRequiresService(t *testing.T) {
	handler := NewReindexHandler(nil, nil)

	err := handler.Execute(context.Background(), ReindexPostsCommand{})
	if err == nil || !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected service requirement, got %v", err)
	}
}
