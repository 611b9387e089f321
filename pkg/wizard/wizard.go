package wizard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/schema"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/submission"
)

// BasicInfo holds the asset attributes collected outside the field sets.
type BasicInfo struct {
	Name           string                 `json:"name"`
	HierarchyLevel model.HierarchyLevel   `json:"hierarchy_level"`
	Status         model.AssetStatus      `json:"status"`
	Criticality    model.CriticalityLevel `json:"criticality"`
	Location       string                 `json:"location,omitempty"`
	ParentID       string                 `json:"parent_id,omitempty"`
}

// DefaultBasicInfo returns the attributes a new asset starts with.
func DefaultBasicInfo() BasicInfo {
	return BasicInfo{
		HierarchyLevel: model.HierarchyUnit,
		Status:         model.AssetActive,
		Criticality:    model.CriticalityMedium,
	}
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the logger used for configuration issues, merge
// collisions and submissions.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Wizard walks one asset through creation or editing. A Wizard belongs to a
// single session: create one per open and Close it when the session ends. It
// is not safe for concurrent use.
type Wizard struct {
	catalog store.Catalog
	sink    store.AssetSink
	logger  *zap.Logger

	edit    bool
	assetID string

	info      BasicInfo
	assetType *model.AssetType
	core      model.FieldSet
	forms     []model.FormDefinition
	form      *model.FormDefinition
	custom    model.FieldSet

	values    map[submission.Stage]model.FormValue
	errors    map[submission.Stage]map[string]string
	validated map[submission.Stage]bool
	stored    model.FormValue
	issues    []model.ConfigIssue

	step      Step
	result    *model.Asset
	submitted bool
	closed    bool
}

// New starts a creation wizard on the asset-type step.
func New(catalog store.Catalog, sink store.AssetSink, opts ...Option) *Wizard {
	w := &Wizard{
		catalog: catalog,
		sink:    sink,
		logger:  zap.NewNop(),
		info:    DefaultBasicInfo(),
	}
	w.resetValues()
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.step = w.Plan().First()
	return w
}

// NewEdit starts an edit wizard for an existing asset. The asset's data is
// split between the core fields of its type and the fields of the first
// published form for that type; keys owned by neither are carried through to
// the saved payload untouched.
func NewEdit(ctx context.Context, catalog store.Catalog, sink store.AssetSink, asset model.Asset, opts ...Option) (*Wizard, error) {
	w := New(catalog, sink, opts...)
	w.edit = true
	w.assetID = asset.ID
	w.info = BasicInfo{
		Name:           asset.Name,
		HierarchyLevel: asset.HierarchyLevel,
		Status:         asset.Status,
		Criticality:    asset.Criticality,
		Location:       asset.Location,
		ParentID:       asset.ParentID,
	}
	w.fillDefaults()

	if asset.AssetTypeID != "" {
		if err := w.loadAssetType(ctx, asset.AssetTypeID); err != nil {
			return nil, err
		}
		if len(w.forms) > 0 {
			if err := w.loadForm(ctx, w.forms[0]); err != nil {
				return nil, err
			}
		}
	}

	coreValues, rest := submission.Split(asset.Data, w.core)
	customValues, stored := submission.Split(rest, w.custom)
	w.values[submission.StageCore] = coreValues
	w.values[submission.StageCustom] = customValues
	w.seedDefaults(submission.StageCore)
	w.seedDefaults(submission.StageCustom)
	w.stored = stored
	if len(stored) > 0 {
		w.logger.Info("asset carries values outside the current field sets",
			zap.String("asset_id", asset.ID),
			zap.Strings("keys", sortedKeys(stored)),
		)
	}

	w.step = w.Plan().First()
	return w, nil
}

// Editing reports whether the wizard edits an existing asset.
func (w *Wizard) Editing() bool {
	return w.edit
}

// Plan returns the facts driving the current step sequence.
func (w *Wizard) Plan() Plan {
	return Plan{
		Edit:                      w.edit,
		HasCoreFields:             len(assembler.Renderable(w.core)) > 0,
		AvailableForms:            len(w.forms),
		FormChosen:                w.form != nil,
		ChosenFormHasCustomFields: w.form != nil && len(assembler.Renderable(w.custom)) > 0,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return w.step
}

// Steps returns the active step sequence.
func (w *Wizard) Steps() []Step {
	return w.Plan().Steps()
}

// BasicInfo returns the collected asset attributes.
func (w *Wizard) BasicInfo() BasicInfo {
	return w.info
}

// SetBasicInfo replaces the asset attributes. Empty enum values fall back to
// the defaults; unknown ones are rejected.
func (w *Wizard) SetBasicInfo(info BasicInfo) error {
	if w.closed {
		return ErrClosed
	}
	if info.HierarchyLevel != "" && !info.HierarchyLevel.Valid() {
		return fmt.Errorf("wizard: unknown hierarchy level %q", info.HierarchyLevel)
	}
	if info.Status != "" && !info.Status.Valid() {
		return fmt.Errorf("wizard: unknown asset status %q", info.Status)
	}
	if info.Criticality != "" && !info.Criticality.Valid() {
		return fmt.Errorf("wizard: unknown criticality %q", info.Criticality)
	}
	w.info = info
	w.fillDefaults()
	return nil
}

// AssetType returns the selected asset type.
func (w *Wizard) AssetType() (model.AssetType, bool) {
	if w.assetType == nil {
		return model.AssetType{}, false
	}
	return *w.assetType, true
}

// Forms returns the forms published for the selected asset type.
func (w *Wizard) Forms() []model.FormDefinition {
	return append([]model.FormDefinition(nil), w.forms...)
}

// Form returns the chosen form.
func (w *Wizard) Form() (model.FormDefinition, bool) {
	if w.form == nil {
		return model.FormDefinition{}, false
	}
	return *w.form, true
}

// SelectAssetType loads the asset type, its core fields and its published
// forms. Previously collected field values and the form choice are dropped.
// A single available form is selected automatically.
func (w *Wizard) SelectAssetType(ctx context.Context, id string) error {
	if w.closed {
		return ErrClosed
	}
	if w.edit {
		return ErrAssetTypeFixed
	}
	if err := w.loadAssetType(ctx, id); err != nil {
		return err
	}
	w.resetValues()
	w.seedDefaults(submission.StageCore)
	if len(w.forms) == 1 {
		return w.loadForm(ctx, w.forms[0])
	}
	return nil
}

// SelectForm chooses one of the available forms. Switching forms drops the
// values collected for the previous one.
func (w *Wizard) SelectForm(ctx context.Context, id string) error {
	if w.closed {
		return ErrClosed
	}
	for _, form := range w.forms {
		if form.ID != id {
			continue
		}
		if w.form != nil && w.form.ID == id {
			return nil
		}
		w.values[submission.StageCustom] = model.FormValue{}
		delete(w.errors, submission.StageCustom)
		delete(w.validated, submission.StageCustom)
		return w.loadForm(ctx, form)
	}
	return fmt.Errorf("%w: %q", ErrFormUnavailable, id)
}

// Fields returns the renderable fields of a stage in display order.
func (w *Wizard) Fields(stage submission.Stage) ([]model.FieldDescriptor, error) {
	set, err := w.set(stage)
	if err != nil {
		return nil, err
	}
	return assembler.Renderable(set), nil
}

// Issues returns the configuration issues found in the selected field sets.
// They never block the wizard.
func (w *Wizard) Issues() []model.ConfigIssue {
	return append([]model.ConfigIssue(nil), w.issues...)
}

// Assembly composes the selected field sets into render stages.
func (w *Wizard) Assembly() assembler.Assembly {
	var core, custom *model.FieldSet
	if w.assetType != nil {
		core = &w.core
	}
	if w.form != nil {
		custom = &w.custom
	}
	return assembler.New(assembler.WithLogger(w.logger)).Assemble(core, custom)
}

// Values returns a copy of the values collected for a stage.
func (w *Wizard) Values(stage submission.Stage) model.FormValue {
	return w.values[stage].Clone()
}

// Errors returns the validation messages from the last SubmitStage call.
func (w *Wizard) Errors(stage submission.Stage) map[string]string {
	out := make(map[string]string, len(w.errors[stage]))
	for key, message := range w.errors[stage] {
		out[key] = message
	}
	return out
}

// SubmitStage validates and stores the values of a stage. Readonly fields
// keep the value held for the stage and missing values fall back to the
// field defaults. Valid values are stored coerced, and values of hidden or
// system fields already held for the stage are kept. Invalid values are stored as entered so they can be
// corrected, and the returned error wraps ErrStageInvalid and the
// *schema.ValidationError.
func (w *Wizard) SubmitStage(stage submission.Stage, values model.FormValue) (schema.Result, error) {
	if w.closed {
		return schema.Result{}, ErrClosed
	}
	set, err := w.set(stage)
	if err != nil {
		return schema.Result{}, err
	}
	values = w.withHeldValues(stage, set, values)
	result := schema.Synthesize(assembler.Renderable(set)).Validate(values)
	if !result.Valid {
		w.values[stage] = values.Clone()
		w.errors[stage] = result.Errors
		w.validated[stage] = false
		return result, fmt.Errorf("%w: %w", ErrStageInvalid, result.Err())
	}
	values = result.Values
	for key, value := range w.values[stage] {
		if _, collected := values[key]; collected {
			continue
		}
		if _, owned := set.Lookup(key); owned {
			values[key] = value
		}
	}
	w.values[stage] = values
	delete(w.errors, stage)
	w.validated[stage] = true
	return result, nil
}

// withHeldValues overlays the held values of readonly fields on values and
// seeds the remaining gaps with field defaults.
func (w *Wizard) withHeldValues(stage submission.Stage, set model.FieldSet, values model.FormValue) model.FormValue {
	out := values.Clone()
	if out == nil {
		out = model.FormValue{}
	}
	for _, field := range set.Fields {
		if !field.IsReadonly {
			continue
		}
		if held, ok := w.values[stage][field.FieldKey]; ok {
			out[field.FieldKey] = held
		}
	}
	return model.SeedDefaults(set.Fields, out)
}

// CanProceed reports whether the current step is complete.
func (w *Wizard) CanProceed() bool {
	if w.closed {
		return false
	}
	switch w.step {
	case StepAssetType:
		return w.assetType != nil && strings.TrimSpace(w.info.Name) != ""
	case StepBasicInfo:
		return strings.TrimSpace(w.info.Name) != ""
	case StepCoreFields:
		return w.validated[submission.StageCore]
	case StepFormSelect:
		return w.form != nil
	case StepFormFill:
		return w.validated[submission.StageCustom]
	default:
		return true
	}
}

// Next advances to the following active step.
func (w *Wizard) Next() (Step, error) {
	if w.closed {
		return w.step, ErrClosed
	}
	if !w.CanProceed() {
		return w.step, fmt.Errorf("%w: %s", ErrNotReady, w.step)
	}
	next, ok := w.Plan().Next(w.step)
	if !ok {
		return w.step, ErrNoStep
	}
	w.step = next
	return next, nil
}

// Back returns to the previous active step. Collected values are kept.
func (w *Wizard) Back() (Step, error) {
	if w.closed {
		return w.step, ErrClosed
	}
	prev, ok := w.Plan().Back(w.step)
	if !ok {
		return w.step, ErrNoStep
	}
	w.step = prev
	return prev, nil
}

// Payload merges the collected stage values. Stored values not owned by any
// field set go first, then core, then custom, so custom wins on shared keys.
func (w *Wizard) Payload() submission.Result {
	return submission.Merge(w.stages()...)
}

// Review lists the merged values for the review screen.
func (w *Wizard) Review() []submission.Entry {
	fields := append(append([]model.FieldDescriptor(nil), w.core.Fields...), w.custom.Fields...)
	return submission.Review(w.stages(), submission.FieldLabeler(fields...))
}

// Submit sends the merged payload to the sink. It is only available on the
// last step once every shown stage validated. A sink failure returns a
// *SubmissionError and leaves the wizard untouched; a success makes further
// calls return ErrSubmitted.
func (w *Wizard) Submit(ctx context.Context) (model.Asset, error) {
	if w.closed {
		return model.Asset{}, ErrClosed
	}
	if w.submitted {
		return model.Asset{}, ErrSubmitted
	}
	if err := w.ready(); err != nil {
		return model.Asset{}, err
	}

	payload := w.Payload()
	for _, collision := range payload.Collisions {
		w.logger.Warn("field value overwritten on merge",
			zap.String("field_key", collision.Key),
			zap.String("earlier", string(collision.Earlier)),
			zap.String("later", string(collision.Later)),
		)
	}

	asset := model.Asset{
		ID:             w.assetID,
		Name:           strings.TrimSpace(w.info.Name),
		ParentID:       w.info.ParentID,
		HierarchyLevel: w.info.HierarchyLevel,
		Status:         w.info.Status,
		Criticality:    w.info.Criticality,
		Location:       w.info.Location,
		Data:           payload.Values,
	}
	if w.assetType != nil {
		asset.AssetTypeID = w.assetType.ID
	}

	var (
		saved model.Asset
		err   error
	)
	if w.edit {
		saved, err = w.sink.UpdateAsset(ctx, asset)
	} else {
		saved, err = w.sink.CreateAsset(ctx, asset)
	}
	if err != nil {
		w.logger.Error("asset submission failed", zap.String("asset_id", asset.ID), zap.Error(err))
		return model.Asset{}, &SubmissionError{Err: err}
	}

	w.submitted = true
	w.result = &saved
	w.logger.Info("asset submitted", zap.String("asset_id", saved.ID), zap.Bool("edit", w.edit))
	return saved, nil
}

// Submitted returns the asset saved by a successful Submit.
func (w *Wizard) Submitted() (model.Asset, bool) {
	if w.result == nil {
		return model.Asset{}, false
	}
	return *w.result, true
}

// Close discards the wizard state. Every later call fails with ErrClosed.
func (w *Wizard) Close() {
	w.closed = true
	w.assetType = nil
	w.form = nil
	w.forms = nil
	w.core = model.FieldSet{}
	w.custom = model.FieldSet{}
	w.stored = nil
	w.issues = nil
	w.info = BasicInfo{}
	w.resetValues()
}

func (w *Wizard) ready() error {
	plan := w.Plan()
	if w.step != plan.Last() {
		return fmt.Errorf("%w: submit is only available on the %s step", ErrNotReady, plan.Last())
	}
	if strings.TrimSpace(w.info.Name) == "" {
		return fmt.Errorf("%w: asset name is required", ErrNotReady)
	}
	if !w.edit && w.assetType == nil {
		return fmt.Errorf("%w: asset type is required", ErrNotReady)
	}
	if plan.Includes(StepCoreFields) && !w.validated[submission.StageCore] {
		return fmt.Errorf("%w: %s", ErrNotReady, StepCoreFields)
	}
	if plan.Includes(StepFormFill) && !w.validated[submission.StageCustom] {
		return fmt.Errorf("%w: %s", ErrNotReady, StepFormFill)
	}
	return nil
}

func (w *Wizard) stages() []submission.StageValue {
	var stages []submission.StageValue
	if len(w.stored) > 0 {
		stages = append(stages, submission.StageValue{Stage: submission.StageStored, Values: w.stored})
	}
	stages = append(stages, submission.Core(w.values[submission.StageCore]))
	if w.form != nil {
		stages = append(stages, submission.Custom(w.values[submission.StageCustom]))
	}
	return stages
}

func (w *Wizard) set(stage submission.Stage) (model.FieldSet, error) {
	switch stage {
	case submission.StageCore:
		if w.assetType == nil {
			return model.FieldSet{}, fmt.Errorf("%w: no asset type selected", ErrNotReady)
		}
		return w.core, nil
	case submission.StageCustom:
		if w.form == nil {
			return model.FieldSet{}, fmt.Errorf("%w: no form selected", ErrNotReady)
		}
		return w.custom, nil
	default:
		return model.FieldSet{}, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
}

func (w *Wizard) loadAssetType(ctx context.Context, id string) error {
	at, err := w.catalog.AssetType(ctx, id)
	if err != nil {
		return fmt.Errorf("wizard: load asset type: %w", err)
	}
	core, err := w.catalog.CoreFields(ctx, id)
	if err != nil {
		return fmt.Errorf("wizard: load core fields: %w", err)
	}
	forms, err := w.catalog.Forms(ctx, id)
	if err != nil {
		return fmt.Errorf("wizard: load forms: %w", err)
	}

	available := make([]model.FormDefinition, 0, len(forms))
	for _, form := range forms {
		if form.AssetTypeID == id && form.IsPublished {
			available = append(available, form)
		}
	}

	w.assetType = &at
	w.core = core
	w.forms = available
	w.form = nil
	w.custom = model.FieldSet{}
	w.checkConfiguration()
	return nil
}

// checkConfiguration records the configuration issues of the selected sets.
// The assembler logs each one.
func (w *Wizard) checkConfiguration() {
	w.issues = w.Assembly().Issues
}

func (w *Wizard) loadForm(ctx context.Context, form model.FormDefinition) error {
	fields, err := w.catalog.FormFields(ctx, form.ID)
	if err != nil {
		return fmt.Errorf("wizard: load form fields: %w", err)
	}
	w.form = &form
	w.custom = fields
	w.seedDefaults(submission.StageCustom)
	w.checkConfiguration()
	return nil
}

// seedDefaults fills the stage values still missing with the typed defaults
// of the stage's fields.
func (w *Wizard) seedDefaults(stage submission.Stage) {
	set, err := w.set(stage)
	if err != nil {
		return
	}
	w.values[stage] = model.SeedDefaults(set.Fields, w.values[stage])
}

func (w *Wizard) resetValues() {
	w.values = map[submission.Stage]model.FormValue{
		submission.StageCore:   {},
		submission.StageCustom: {},
	}
	w.errors = make(map[submission.Stage]map[string]string)
	w.validated = make(map[submission.Stage]bool)
}

func (w *Wizard) fillDefaults() {
	defaults := DefaultBasicInfo()
	if w.info.HierarchyLevel == "" {
		w.info.HierarchyLevel = defaults.HierarchyLevel
	}
	if w.info.Status == "" {
		w.info.Status = defaults.Status
	}
	if w.info.Criticality == "" {
		w.info.Criticality = defaults.Criticality
	}
}

func sortedKeys(values model.FormValue) []string {
	keys := values.Keys()
	sort.Strings(keys)
	return keys
}
