// Package staticcmd exposes static site generation as dispatchable commands.
package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/generator"
)

const (
	buildSiteMessageType = "blog.static.build"
	cleanSiteMessageType = "blog.static.clean"
)

// ResultCallback receives build results produced by generator operations. The
// callback is optional and invoked synchronously from the handler.
type ResultCallback func(*generator.BuildResult)

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures slug filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, slug := range m.Slugs {
		if strings.TrimSpace(slug) == "" {
			errs["slugs"] = validation.NewError("blog.static.build.slug_invalid", "slugs must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generator artifacts from the configured output.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }
