// Package assetform is the top-level entry point of the asset form engine.
// It re-exports the types most callers need and wraps the orchestrator for
// one-shot rendering.
package assetform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/schema"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/submission"
)

// FieldDescriptor aliases model.FieldDescriptor.
type FieldDescriptor = model.FieldDescriptor

// FieldSet aliases model.FieldSet.
type FieldSet = model.FieldSet

// FormValue aliases model.FormValue.
type FormValue = model.FormValue

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(catalog store.Catalog, options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(catalog, options...)
}

// GenerateHTML renders one stage of an asset type with the named renderer.
// An empty formID renders the core stage; an empty rendererName uses HTML.
func GenerateHTML(ctx context.Context, catalog store.Catalog, assetTypeID, formID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	result, err := orchestrator.New(catalog, options...).Generate(ctx, orchestrator.Request{
		AssetTypeID: assetTypeID,
		FormID:      formID,
		Renderer:    rendererName,
	})
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// Validate synthesises a validator for fields and checks values against it.
func Validate(fields []FieldDescriptor, values FormValue) schema.Result {
	return schema.Synthesize(fields).Validate(values)
}

// MergeSubmission merges core and custom values; custom wins on shared keys.
func MergeSubmission(core, custom FormValue) submission.Result {
	return submission.Merge(submission.Core(core), submission.Custom(custom))
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
