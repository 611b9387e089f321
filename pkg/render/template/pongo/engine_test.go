package pongo_test

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-assetform/pkg/render/template/pongo"
	"github.com/goliatone/go-assetform/pkg/testsupport"
)

var templates = fstest.MapFS{
	"hello.tmpl":      {Data: []byte("Hello {{ name }}!")},
	"use-filter.tmpl": {Data: []byte("{{ name|shout }}")},
	"grid.tmpl":       {Data: []byte(`{% for f in fields %}<div class="{{ f.wide|gridspan }}">{{ f.label }}</div>{% endfor %}`)},
	"escape.tmpl":     {Data: []byte("{{ help }}")},
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()
	engine, err := pongo.New(pongo.WithFS(templates))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func gridspan(input any, _ any) (any, error) {
	if wide, _ := input.(bool); wide {
		return "span-2", nil
	}
	return "span-1", nil
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	if result != "Hello Ada!" {
		t.Fatalf("unexpected result %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", result, written)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	// the first registration wins
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return "replaced", nil }); err != nil {
		t.Fatalf("re-register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected result %q", result)
	}

	if err := engine.RegisterFilter(" ", gridspan); err == nil {
		t.Fatalf("expected blank filter name to fail")
	}
}

func TestEngineRegisterFilterConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine, err := pongo.New(pongo.WithFS(templates))
			if err != nil {
				errs <- err
				return
			}
			errs <- engine.RegisterFilter("gridspan", gridspan)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("register filter: %v", err)
		}
	}

	result, err := newEngine(t).RenderTemplate("grid", map[string]any{
		"fields": []any{
			map[string]any{"label": "Notes", "wide": true},
			map[string]any{"label": "Size", "wide": false},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div class="span-2">Notes</div><div class="span-1">Size</div>`
	if result != want {
		t.Fatalf("grid mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngineEscapesByDefault(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderTemplate("escape", map[string]any{"help": "<b>bold</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(result, "<b>") {
		t.Fatalf("expected autoescaped output, got %q", result)
	}
}

func TestEngineRejectsNonMapData(t *testing.T) {
	if _, err := newEngine(t).RenderTemplate("hello", struct{ Name string }{"Ada"}); err == nil {
		t.Fatalf("expected struct data to be rejected")
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}
