// Package store defines the data-access boundary the wizard and HTTP API
// consume. Persistence lives behind these interfaces; the memory and
// sqlstore subpackages are adapters for tests, fixtures and the CLI.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-assetform/pkg/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Catalog reads asset types, form definitions and their field sets.
type Catalog interface {
	AssetType(ctx context.Context, id string) (model.AssetType, error)
	AssetTypes(ctx context.Context) ([]model.AssetType, error)
	// CoreFields returns the asset type's core field set in stored order.
	CoreFields(ctx context.Context, assetTypeID string) (model.FieldSet, error)
	// Forms returns the published form definitions scoped to the asset type.
	Forms(ctx context.Context, assetTypeID string) ([]model.FormDefinition, error)
	Form(ctx context.Context, id string) (model.FormDefinition, error)
	// FormFields returns the form's custom field set in stored order.
	FormFields(ctx context.Context, formID string) (model.FieldSet, error)
}

// AssetSink receives completed asset payloads. It is called once per
// submission; retries are the caller's concern.
type AssetSink interface {
	CreateAsset(ctx context.Context, asset model.Asset) (model.Asset, error)
	UpdateAsset(ctx context.Context, asset model.Asset) (model.Asset, error)
}

// RejectionError is returned by sinks that reject a payload with
// per-field messages.
type RejectionError struct {
	Message string
	Fields  map[string][]string
}

func (e *RejectionError) Error() string {
	if e == nil {
		return "store: payload rejected"
	}
	if e.Message == "" {
		return fmt.Sprintf("store: payload rejected (%d field errors)", len(e.Fields))
	}
	return "store: payload rejected: " + e.Message
}

// ErrorPayload exposes the messages keyed by field path, with form-level
// messages under the empty key.
func (e *RejectionError) ErrorPayload() map[string][]string {
	out := make(map[string][]string, len(e.Fields)+1)
	for key, messages := range e.Fields {
		out[key] = append([]string(nil), messages...)
	}
	if e.Message != "" {
		out[""] = append(out[""], e.Message)
	}
	return out
}

// NotFound wraps ErrNotFound with the record kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
