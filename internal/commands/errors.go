package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures so log pipelines can group them
// without parsing message text.
const (
	codeMessageRejected = "BLOG_CMD_MESSAGE_REJECTED"
	codeRunCancelled    = "BLOG_CMD_RUN_CANCELLED"
	codeRunTimedOut     = "BLOG_CMD_RUN_TIMED_OUT"
	codeRunAborted      = "BLOG_CMD_RUN_ABORTED"
	codeRunFailed       = "BLOG_CMD_RUN_FAILED"
)

// tagValidation marks a message that failed its own Validate hook. Errors a
// lower layer already categorised pass through untouched.
func tagValidation(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
		WithTextCode(codeMessageRejected)
}

// tagContext classifies a context failure observed around a command run,
// separating caller cancellation from the handler's own deadline.
func tagContext(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	msg, code := "command run aborted", codeRunAborted
	switch {
	case errors.Is(err, context.Canceled):
		msg, code = "command run cancelled", codeRunCancelled
	case errors.Is(err, context.DeadlineExceeded):
		msg, code = "command run timed out", codeRunTimedOut
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

// tagExecution marks a failure returned by the wrapped command itself.
func tagExecution(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command run failed").
		WithTextCode(codeRunFailed)
}
