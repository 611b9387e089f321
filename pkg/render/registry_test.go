package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/render"
)

type stubRenderer struct {
	name        string
	contentType string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return s.contentType }
func (s stubRenderer) Render(context.Context, render.Form, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "tui", contentType: "application/json"})
	registry.MustRegister(stubRenderer{name: "html", contentType: "text/html; charset=utf-8"})

	if err := registry.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected empty name to fail")
	}

	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fallback, err := registry.Get("")
	if err != nil || fallback.Name() != "tui" {
		t.Fatalf("expected first registered renderer as default, got %v %v", fallback, err)
	}
	if err := registry.SetDefault("html"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if fallback, _ := registry.Get(""); fallback.Name() != "html" {
		t.Fatalf("expected html default, got %s", fallback.Name())
	}
	if err := registry.SetDefault("pdf"); err == nil {
		t.Fatalf("expected unknown default to fail")
	}

	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}
