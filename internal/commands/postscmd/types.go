// Package postscmd exposes post maintenance operations as dispatchable
// commands.
package postscmd

import (
	"github.com/goliatone/go-blog/internal/posts"
)

const reindexMessageType = "blog.posts.reindex"

// ResultCallback receives the reindex outcome. Optional; invoked
// synchronously from the handler.
type ResultCallback func(*posts.ReindexResult)

// ReindexPostsCommand walks the content directory and refreshes the post
// index.
type ReindexPostsCommand struct {
	DryRun         bool           `json:"dry_run,omitempty"`
	DeleteOrphaned bool           `json:"delete_orphaned,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ReindexPostsCommand) Type() string { return reindexMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (ReindexPostsCommand) Validate() error { return nil }
