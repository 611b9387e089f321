package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/testsupport"
)

func coreForm(t *testing.T) render.Form {
	t.Helper()
	core := testsupport.PumpCoreFields()
	assembly := assembler.Assemble(&core, nil)
	stage, ok := assembly.Stage(model.OriginCore)
	if !ok {
		t.Fatalf("expected core stage")
	}
	return render.Form{ID: "pump-core", Title: "Pump", Action: "/assets", Stage: stage}
}

func newRenderer(t *testing.T, options ...html.Option) *html.Renderer {
	t.Helper()
	renderer, err := html.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestRendererContract(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderStage(t *testing.T) {
	renderer := newRenderer(t)
	out, err := renderer.Render(context.Background(), coreForm(t), render.RenderOptions{
		Values: model.FormValue{"serial_number": "SN-<1>", "size": "M", "rated_power": 7.5},
		Errors: map[string][]string{"rated_power": {"Rated Power is required"}},
		Hidden: map[string]string{"asset_type_id": "pump"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)

	for _, want := range []string{
		`<form id="pump-core"`,
		`action="/assets"`,
		`method="post"`,
		`<h2 class="assetform-title">Pump</h2>`,
		`<input type="hidden" name="asset_type_id" value="pump">`,
		`data-field-key="serial_number"`,
		`value="SN-&lt;1&gt;"`,
		`placeholder="Enter serial number..."`,
		`type="number" step="any" value="7.5"`,
		`<option value="M" selected>M</option>`,
		`<option value="">Select...</option>`,
		`Rated Power is required`,
		`<b>kW</b>`,
		`class="assetform-field col-span-2" data-field-key="notes"`,
		`<span class="assetform-required" aria-hidden="true">*</span>`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected output to contain %q\n%s", want, doc)
		}
	}

	for _, unwanted := range []string{"legacy_code", "synced_at"} {
		if strings.Contains(doc, unwanted) {
			t.Fatalf("hidden or system field %q rendered", unwanted)
		}
	}

	serial := strings.Index(doc, `data-field-key="serial_number"`)
	power := strings.Index(doc, `data-field-key="rated_power"`)
	if serial > power {
		t.Fatalf("fields must render in sort order")
	}
}

func TestRenderSanitisesHelpText(t *testing.T) {
	form := render.Form{Stage: assembler.Stage{
		Origin: model.OriginCustom,
		Rows: assembler.Layout([]model.FieldDescriptor{{
			FieldKey:  "notes",
			Label:     "Notes",
			FieldType: model.FieldTypeText,
			IsVisible: true,
			HelpText:  `Read the <a href="https://example.com">manual</a><script>alert(1)</script>`,
		}}),
	}}

	out, err := newRenderer(t).Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)
	if strings.Contains(doc, "<script>") {
		t.Fatalf("script survived sanitisation:\n%s", doc)
	}
	if !strings.Contains(doc, "manual</a>") {
		t.Fatalf("expected link to survive sanitisation:\n%s", doc)
	}
	if !strings.Contains(doc, `id="assetform-custom"`) {
		t.Fatalf("expected default form id from stage origin:\n%s", doc)
	}
}

func TestRenderReadonly(t *testing.T) {
	out, err := newRenderer(t).Render(context.Background(), coreForm(t), render.RenderOptions{Readonly: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(string(out), " disabled"); got != 4 {
		t.Fatalf("expected 4 disabled controls, got %d\n%s", got, out)
	}
}

func TestRenderFormErrors(t *testing.T) {
	out, err := newRenderer(t).Render(context.Background(), coreForm(t), render.RenderOptions{
		FormErrors: []string{"Asset name already exists", " Asset name already exists "},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(string(out), "Asset name already exists"); got != 1 {
		t.Fatalf("expected deduplicated form error, got %d", got)
	}
}

func TestWithTemplatesFS(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tmpl": {Data: []byte(`{% for row in rows %}{% for field in row.fields %}[{{ field.key }}]{% endfor %}{% endfor %}`)},
	}
	out, err := newRenderer(t, html.WithTemplatesFS(files)).Render(context.Background(), coreForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "[serial_number][rated_power][size][notes]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, coreForm(t), render.RenderOptions{}); err == nil {
		t.Fatalf("expected cancelled context to abort rendering")
	}
}
