package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-assetform/pkg/model"
)

// Transformer patches a loaded field set before assembly. Implementations
// can relabel fields, reorder them or hide them for a particular surface.
type Transformer interface {
	Transform(ctx context.Context, set *model.FieldSet) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, set *model.FieldSet) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, set *model.FieldSet) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, set)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// Patches are keyed by field key:
//
//	{
//	  "fields": {
//	    "serial_number": {"label": "Serial #", "sort_order": 0, "column_span": 2},
//	    "legacy_code": {"hidden": true}
//	  }
//	}
//
// Keys absent from the set being transformed are ignored, so one document
// can cover the core stage and every form.
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Fields map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string `json:"label"`
	HelpText    string `json:"help_text"`
	Placeholder string `json:"placeholder"`
	SortOrder   *int   `json:"sort_order"`
	ColumnSpan  *int   `json:"column_span"`
	Hidden      *bool  `json:"hidden"`
	Readonly    *bool  `json:"readonly"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied set.
func (t *JSONPresetTransformer) Transform(ctx context.Context, set *model.FieldSet) error {
	if set == nil {
		return errors.New("json preset transformer: field set is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for idx := range set.Fields {
		patch, ok := t.document.Fields[set.Fields[idx].FieldKey]
		if !ok {
			continue
		}
		applyFieldPatch(&set.Fields[idx], patch)
	}
	return nil
}

func applyFieldPatch(field *model.FieldDescriptor, patch jsonFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.HelpText != "" {
		field.HelpText = patch.HelpText
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.SortOrder != nil {
		field.SortOrder = *patch.SortOrder
	}
	if patch.ColumnSpan != nil {
		field.ColumnSpan = *patch.ColumnSpan
	}
	if patch.Hidden != nil {
		field.IsVisible = !*patch.Hidden
	}
	if patch.Readonly != nil {
		field.IsReadonly = *patch.Readonly
	}
}
