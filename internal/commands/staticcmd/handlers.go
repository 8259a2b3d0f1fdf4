package staticcmd

import (
	"context"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds through the shared command
// foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrGeneratorDisabled
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Slugs:         append([]string(nil), msg.Slugs...),
			DryRun:        msg.DryRun,
			IncludeDrafts: msg.IncludeDrafts,
		})
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator output.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil {
			return generator.ErrGeneratorDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
