// Package html renders assembled form stages as HTML using pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	rendertemplate "github.com/goliatone/go-assetform/pkg/render/template"
	"github.com/goliatone/go-assetform/pkg/render/template/pongo"
)

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS fs.FS
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	policy    *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	engine, err := pongo.New(
		pongo.WithName("assetform-html"),
		pongo.WithFS(cfg.templateFS),
		pongo.WithExtension(".tmpl"),
	)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
	}
	if err := engine.RegisterFilter("colspan", colspan); err != nil {
		return nil, fmt.Errorf("html renderer: register colspan filter: %w", err)
	}

	return &Renderer{templates: engine, policy: bluemonday.UGCPolicy()}, nil
}

// colspan maps a field's "wide" flag to its grid class.
func colspan(input any, _ any) (any, error) {
	if wide, _ := input.(bool); wide {
		return "col-span-2", nil
	}
	return "col-span-1", nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the stage as a two-column grid form.
func (r *Renderer) Render(ctx context.Context, form render.Form, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := r.templates.RenderTemplate(formTemplate, r.view(form, options))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) view(form render.Form, options render.RenderOptions) map[string]any {
	method := strings.ToLower(strings.TrimSpace(form.Method))
	if method == "" {
		method = "post"
	}
	formID := form.ID
	if formID == "" {
		formID = fmt.Sprintf("assetform-%s", form.Stage.Origin)
	}

	rows := make([]any, 0, len(form.Stage.Rows))
	for _, row := range form.Stage.Rows {
		fields := make([]any, 0, len(row.Fields))
		for _, field := range row.Fields {
			fields = append(fields, r.fieldView(formID, field, options))
		}
		rows = append(rows, map[string]any{"fields": fields})
	}

	hidden := make([]any, 0, len(options.Hidden))
	for _, h := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]any{"name": h.Name, "value": h.Value})
	}
	formErrors := make([]any, 0, len(options.FormErrors))
	for _, message := range render.MergeFormErrors(options.FormErrors) {
		formErrors = append(formErrors, message)
	}

	return map[string]any{
		"form": map[string]any{
			"id":          formID,
			"title":       form.Title,
			"description": form.Description,
			"action":      form.Action,
			"method":      method,
			"stage":       string(form.Stage.Origin),
		},
		"rows":        rows,
		"hidden":      hidden,
		"form_errors": formErrors,
	}
}

func (r *Renderer) fieldView(formID string, field model.FieldDescriptor, options render.RenderOptions) map[string]any {
	control := render.Bind(field, options.Values[field.FieldKey], options.OnChange, options.Readonly)

	choices := make([]any, 0, len(control.Options))
	for _, option := range control.Options {
		choices = append(choices, map[string]any{
			"label":    option.Label,
			"value":    option.Value,
			"selected": control.Selected(option),
		})
	}
	messages := make([]any, 0)
	for _, message := range options.Errors[field.FieldKey] {
		if trimmed := strings.TrimSpace(message); trimmed != "" {
			messages = append(messages, trimmed)
		}
	}

	return map[string]any{
		"id":          formID + "-" + field.FieldKey,
		"key":         control.Key,
		"label":       control.Label,
		"kind":        string(control.Kind),
		"input_type":  inputType(control.Kind),
		"text":        control.Text,
		"checked":     control.Checked,
		"placeholder": control.Placeholder,
		"help":        r.policy.Sanitize(control.HelpText),
		"required":    control.Required,
		"disabled":    control.Disabled,
		"wide":        control.Span == 2,
		"options":     choices,
		"errors":      messages,
	}
}

func inputType(kind render.ControlKind) string {
	switch kind {
	case render.ControlNumber:
		return "number"
	case render.ControlDate:
		return "date"
	default:
		return "text"
	}
}
