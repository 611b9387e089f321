package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/store"
)

const defaultRendererName = "html"

// CoreFormID addresses the asset type's core stage instead of a form.
const CoreFormID = "core"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that can patch the field set
// after loading but before assembly.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger routes assembly issues and render failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates loading a stage from the catalog and rendering it.
// It applies sensible defaults (HTML renderer, embedded templates) while
// remaining open to dependency injection for advanced callers.
type Orchestrator struct {
	catalog         store.Catalog
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator over catalog applying any provided options.
// Without a registry the built-in HTML renderer is registered.
func New(catalog store.Catalog, options ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:         catalog,
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the stage to render.
type Request struct {
	AssetTypeID string

	// FormID selects a published form of the asset type, or CoreFormID for
	// the core stage.
	FormID string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Action and Method populate the rendered form element.
	Action string
	Method string

	// RenderOptions carries prefilled values, validation errors and hidden
	// inputs. When omitted, renderers receive the zero-value struct.
	RenderOptions render.RenderOptions
}

// Result is a rendered stage.
type Result struct {
	Output      []byte
	ContentType string
	Stage       assembler.Stage
	Issues      []model.ConfigIssue
}

// Generate loads the stage, applies the transformer, assembles it and
// renders the result. Fields without a prefilled value render their
// configured default.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}
	if req.AssetTypeID == "" {
		return Result{}, errors.New("orchestrator: asset type id is required")
	}
	formID := req.FormID
	if formID == "" {
		formID = CoreFormID
	}

	set, title, err := StageSet(ctx, o.catalog, req.AssetTypeID, formID)
	if err != nil {
		return Result{}, err
	}
	if err := o.applyTransformer(ctx, &set); err != nil {
		return Result{}, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Result{}, err
	}

	assembly := assembler.New(assembler.WithLogger(o.logger)).Assemble(&set, nil)
	stage, _ := assembly.Stage(set.Origin)
	form := render.Form{
		ID:     fmt.Sprintf("assetform-%s-%s", req.AssetTypeID, formID),
		Title:  title,
		Action: req.Action,
		Method: req.Method,
		Stage:  stage,
	}
	options := req.RenderOptions
	options.Values = model.SeedDefaults(stage.Fields, options.Values)
	options.Hidden = render.MergeHiddenFields(options.Hidden,
		render.Hidden("asset_type_id", req.AssetTypeID),
		render.Hidden("form_id", formID),
	)

	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return Result{
		Output:      output,
		ContentType: renderer.ContentType(),
		Stage:       stage,
		Issues:      assembly.Issues,
	}, nil
}

// StageSet loads the field set addressed by formID: the core set for
// CoreFormID, otherwise a published form scoped to the asset type. The
// second result is the stage title.
func StageSet(ctx context.Context, catalog store.Catalog, assetTypeID, formID string) (model.FieldSet, string, error) {
	at, err := catalog.AssetType(ctx, assetTypeID)
	if err != nil {
		return model.FieldSet{}, "", err
	}
	if formID == CoreFormID {
		set, err := catalog.CoreFields(ctx, assetTypeID)
		return set, at.Name, err
	}
	form, err := catalog.Form(ctx, formID)
	if err != nil {
		return model.FieldSet{}, "", err
	}
	if form.AssetTypeID != assetTypeID || !form.IsPublished {
		return model.FieldSet{}, "", store.NotFound("form", formID)
	}
	set, err := catalog.FormFields(ctx, formID)
	return set, form.Name, err
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyTransformer(ctx context.Context, set *model.FieldSet) error {
	if o.transformer == nil || set == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, set); err != nil {
		return fmt.Errorf("orchestrator: transform fields: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
