// Package httpapi exposes the form engine over HTTP: stage rendering,
// payload validation, contract export and asset creation.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/schema"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/submission"
	"github.com/goliatone/go-assetform/pkg/wizard"
)

// Option configures a Server.
type Option func(*Server)

// WithSink enables POST /asset-types/{id}/assets.
func WithSink(sink store.AssetSink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithRenderers sets the renderer registry used for stage rendering.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		s.renderers = registry
	}
}

// WithTransformer patches field sets before stage rendering.
func WithTransformer(t orchestrator.Transformer) Option {
	return func(s *Server) {
		s.transformer = t
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server serves the HTTP API.
type Server struct {
	catalog     store.Catalog
	sink        store.AssetSink
	renderers   *render.Registry
	transformer orchestrator.Transformer
	generator   *orchestrator.Orchestrator
	logger      *zap.Logger
}

// New constructs a Server over catalog.
func New(catalog store.Catalog, opts ...Option) *Server {
	s := &Server{
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.generator = orchestrator.New(catalog,
		orchestrator.WithRegistry(s.renderers),
		orchestrator.WithTransformer(s.transformer),
		orchestrator.WithLogger(s.logger),
	)
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/asset-types", func(r chi.Router) {
		r.Get("/", s.handleListAssetTypes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/forms", s.handleListForms)
			r.Get("/forms/{formID}", s.handleRenderForm)
			r.Get("/schema", s.handleSchema)
			r.Post("/validate", s.handleValidate)
			if s.sink != nil {
				r.Post("/assets", s.handleCreateAsset)
			}
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /asset-types
func (s *Server) handleListAssetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.catalog.AssetTypes(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if types == nil {
		types = []model.AssetType{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"asset_types": types})
}

// GET /asset-types/{id}/forms
func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.catalog.Forms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if forms == nil {
		forms = []model.FormDefinition{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

// handleRenderForm renders one stage with the renderer picked by the
// "renderer" query parameter, falling back to the registry default.
// GET /asset-types/{id}/forms/{formID}
func (s *Server) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	assetTypeID := chi.URLParam(r, "id")
	result, err := s.generator.Generate(r.Context(), orchestrator.Request{
		AssetTypeID: assetTypeID,
		FormID:      chi.URLParam(r, "formID"),
		Renderer:    r.URL.Query().Get("renderer"),
		Action:      fmt.Sprintf("/asset-types/%s/validate", assetTypeID),
		Method:      http.MethodPost,
	})
	switch {
	case errors.Is(err, render.ErrRendererNotFound):
		s.writeError(w, http.StatusNotAcceptable, "UNKNOWN_RENDERER", err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		s.storeError(w, err)
		return
	case err != nil:
		s.logger.Error("render form", zap.String("asset_type_id", assetTypeID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "RENDER_FAILED", "could not render form")
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Output)
}

// handleSchema exports the merged payload contract. The optional form_id
// query parameter adds the form's custom fields after the core fields.
// GET /asset-types/{id}/schema
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetTypeID := chi.URLParam(r, "id")

	core, err := s.catalog.CoreFields(ctx, assetTypeID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	fields := assembler.Renderable(core)
	if formID := r.URL.Query().Get("form_id"); formID != "" {
		custom, _, err := orchestrator.StageSet(ctx, s.catalog, assetTypeID, formID)
		if err != nil {
			s.storeError(w, err)
			return
		}
		fields = append(fields, assembler.Renderable(custom)...)
	}
	s.writeJSON(w, http.StatusOK, schema.ToOpenAPI(fields))
}

type validateRequest struct {
	FormID string          `json:"form_id"`
	Core   model.FormValue `json:"core"`
	Custom model.FormValue `json:"custom"`
}

type validateResponse struct {
	Valid    bool            `json:"valid"`
	Values   model.FormValue `json:"values"`
	Warnings []string        `json:"warnings,omitempty"`
}

// handleValidate validates each stage and returns the merged payload.
// POST /asset-types/{id}/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetTypeID := chi.URLParam(r, "id")

	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	core, err := s.catalog.CoreFields(ctx, assetTypeID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	stages := []submission.StageValue{}
	fieldErrors := map[string]map[string]string{}

	coreResult := schema.Synthesize(assembler.Renderable(core)).Validate(req.Core)
	stages = append(stages, submission.Core(coreResult.Values))
	if !coreResult.Valid {
		fieldErrors[string(submission.StageCore)] = coreResult.Errors
	}

	if req.FormID != "" {
		custom, _, err := orchestrator.StageSet(ctx, s.catalog, assetTypeID, req.FormID)
		if err != nil {
			s.storeError(w, err)
			return
		}
		customResult := schema.Synthesize(assembler.Renderable(custom)).Validate(req.Custom)
		stages = append(stages, submission.Custom(customResult.Values))
		if !customResult.Valid {
			fieldErrors[string(submission.StageCustom)] = customResult.Errors
		}
	}

	if len(fieldErrors) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: fieldErrors,
		})
		return
	}

	merged := submission.Merge(stages...)
	s.writeJSON(w, http.StatusOK, validateResponse{Valid: true, Values: merged.Values, Warnings: merged.Warnings()})
}

type createRequest struct {
	wizard.BasicInfo
	FormID string          `json:"form_id"`
	Core   model.FormValue `json:"core"`
	Custom model.FormValue `json:"custom"`
}

// handleCreateAsset walks a wizard through every step with the posted
// values and submits the asset.
// POST /asset-types/{id}/assets
func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetTypeID := chi.URLParam(r, "id")

	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	wz := wizard.New(s.catalog, s.sink, wizard.WithLogger(s.logger))
	defer wz.Close()

	if err := wz.SetBasicInfo(req.BasicInfo); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_ATTRIBUTES", err.Error())
		return
	}
	if err := wz.SelectAssetType(ctx, assetTypeID); err != nil {
		s.storeError(w, err)
		return
	}
	if req.FormID != "" && !wz.Plan().Includes(wizard.StepFormSelect) {
		if form, ok := wz.Form(); !ok || form.ID != req.FormID {
			s.writeError(w, http.StatusUnprocessableEntity, "FORM_UNAVAILABLE",
				fmt.Sprintf("%v: %q", wizard.ErrFormUnavailable, req.FormID))
			return
		}
	}

	fieldErrors := map[string]map[string]string{}
	for wz.Step() != wz.Plan().Last() {
		switch wz.Step() {
		case wizard.StepCoreFields:
			if _, err := wz.SubmitStage(submission.StageCore, req.Core); err != nil {
				fieldErrors[string(submission.StageCore)] = wz.Errors(submission.StageCore)
			}
		case wizard.StepFormSelect:
			if req.FormID != "" {
				if err := wz.SelectForm(ctx, req.FormID); err != nil {
					s.writeError(w, http.StatusUnprocessableEntity, "FORM_UNAVAILABLE", err.Error())
					return
				}
			}
		case wizard.StepFormFill:
			if _, err := wz.SubmitStage(submission.StageCustom, req.Custom); err != nil {
				fieldErrors[string(submission.StageCustom)] = wz.Errors(submission.StageCustom)
			}
		}
		if len(fieldErrors) > 0 {
			break
		}
		if _, err := wz.Next(); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, "INCOMPLETE", stepMessage(wz.Step(), err))
			return
		}
	}
	if len(fieldErrors) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: fieldErrors,
		})
		return
	}

	asset, err := wz.Submit(ctx)
	var submitErr *wizard.SubmissionError
	switch {
	case errors.As(err, &submitErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, s.rejection(wz, submitErr))
		return
	case err != nil:
		s.writeError(w, http.StatusUnprocessableEntity, "INCOMPLETE", err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, asset)
}

// rejection maps a sink rejection onto the wizard's stages. Messages that
// match no rendered field are returned as form-level errors.
func (s *Server) rejection(wz *wizard.Wizard, err *wizard.SubmissionError) errorResponse {
	resp := errorResponse{Error: "submission rejected", Code: "REJECTED"}
	payload := err.Payload()

	var all []string
	for _, stage := range []submission.Stage{submission.StageCore, submission.StageCustom} {
		fields, ferr := wz.Fields(stage)
		if ferr != nil {
			continue
		}
		keys := make([]string, 0, len(fields))
		for _, field := range fields {
			keys = append(keys, field.FieldKey)
		}
		all = append(all, keys...)

		mapping := render.MapErrorPayload(keys, payload)
		if len(mapping.Fields) == 0 {
			continue
		}
		if resp.Fields == nil {
			resp.Fields = make(map[string]map[string]string)
		}
		stageErrors := make(map[string]string, len(mapping.Fields))
		for key, messages := range mapping.Fields {
			stageErrors[key] = strings.Join(messages, "; ")
		}
		resp.Fields[string(stage)] = stageErrors
	}
	resp.Form = render.MapErrorPayload(all, payload).Form
	return resp
}

func stepMessage(step wizard.Step, err error) string {
	return fmt.Sprintf("%s: %v", step.Label(), err)
}
