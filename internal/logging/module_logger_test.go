package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type fieldsRecorder struct {
	fields map[string]any
}

func newFieldsRecorder() *fieldsRecorder {
	return &fieldsRecorder{}
}

func (r *fieldsRecorder) Trace(msg string, args ...any) {}
func (r *fieldsRecorder) Debug(msg string, args ...any) {}
func (r *fieldsRecorder) Info(msg string, args ...any)  {}
func (r *fieldsRecorder) Warn(msg string, args ...any)  {}
func (r *fieldsRecorder) Error(msg string, args ...any) {}
func (r *fieldsRecorder) Fatal(msg string, args ...any) {}

func (r *fieldsRecorder) WithContext(context.Context) interfaces.Logger { return r }

func (r *fieldsRecorder) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &fieldsRecorder{fields: merged}
}

type recorderProvider struct{}

func (recorderProvider) GetLogger(string) interfaces.Logger { return newFieldsRecorder() }

func TestModuleLoggerNilProvider(t *testing.T) {
	logger := ModuleLogger(nil, "blog.posts")
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
	// Must be safe to call.
	logger.Info("noop")
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	logger := ModuleLogger(recorderProvider{}, "blog.posts")
	recorder, ok := logger.(*fieldsRecorder)
	if !ok {
		t.Fatalf("expected fields recorder, got %T", logger)
	}
	if recorder.fields["module"] != "blog.posts" {
		t.Fatalf("expected module field, got %v", recorder.fields)
	}
}

func TestWithPostContextSkipsEmptyValues(t *testing.T) {
	logger := WithPostContext(newFieldsRecorder(), "posts/a.md", "", "reindex")
	recorder, ok := logger.(*fieldsRecorder)
	if !ok {
		t.Fatalf("expected fields recorder, got %T", logger)
	}
	if recorder.fields["post_path"] != "posts/a.md" || recorder.fields["action"] != "reindex" {
		t.Fatalf("unexpected fields %v", recorder.fields)
	}
	if _, ok := recorder.fields["slug"]; ok {
		t.Fatalf("expected empty slug omitted, got %v", recorder.fields)
	}
}

func TestWithFieldsPassThroughForPlainLoggers(t *testing.T) {
	plain := NoOp()
	if got := WithFields(plain, map[string]any{"k": "v"}); got != plain {
		t.Fatal("expected plain logger returned unchanged")
	}
}
