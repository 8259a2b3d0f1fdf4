package postscmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrServiceRequired indicates the handler was constructed without a posts service.
var ErrServiceRequired = errors.New("postscmd: posts service is required")

// ReindexHandler orchestrates content reindexing through the shared command
// foundation.
type ReindexHandler struct {
	inner *commands.Handler[ReindexPostsCommand]
}

// NewReindexHandler constructs a handler wired to the provided posts service.
func NewReindexHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ReindexPostsCommand]) *ReindexHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ReindexPostsCommand) error {
		if service == nil {
			return ErrServiceRequired
		}

		result, err := service.Reindex(ctx, posts.ReindexOptions{
			DryRun:         msg.DryRun,
			DeleteOrphaned: msg.DeleteOrphaned,
		})
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[ReindexPostsCommand]{
		commands.WithLogger[ReindexPostsCommand](baseLogger),
		commands.WithOperation[ReindexPostsCommand]("posts.reindex"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReindexHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReindexPostsCommand].
func (h *ReindexHandler) Execute(ctx context.Context, msg ReindexPostsCommand) error {
	return h.inner.Execute(ctx, msg)
}
