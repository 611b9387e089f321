package wizard

// Step names one screen of the wizard.
type Step string

const (
	StepAssetType  Step = "asset-type"
	StepBasicInfo  Step = "basic-info"
	StepCoreFields Step = "core-fields"
	StepFormSelect Step = "form-select"
	StepFormFill   Step = "form-fill"
	StepReview     Step = "review"
)

// canonical is the fixed order every plan is a subsequence of.
var canonical = []Step{StepAssetType, StepBasicInfo, StepCoreFields, StepFormSelect, StepFormFill, StepReview}

var stepLabels = map[Step]string{
	StepAssetType:  "Asset Type",
	StepBasicInfo:  "Basic Information",
	StepCoreFields: "Core Fields",
	StepFormSelect: "Select Form",
	StepFormFill:   "Form Fields",
	StepReview:     "Review",
}

// Label returns the display title of the step.
func (s Step) Label() string {
	if label, ok := stepLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Step) rank() int {
	for i, step := range canonical {
		if step == s {
			return i
		}
	}
	return -1
}

// Plan captures the facts the step sequence depends on.
type Plan struct {
	Edit                      bool
	HasCoreFields             bool
	AvailableForms            int
	FormChosen                bool
	ChosenFormHasCustomFields bool
}

// Steps returns the active step sequence.
//
// Creating: asset-type first and review last. Core fields are skipped when
// there are none. With no forms both form steps are skipped; with one form
// the selection is implicit and only form-fill may show; with several the
// selection step shows, and form-fill shows until a chosen form turns out to
// have no fields.
//
// Editing: basic-info, then core-fields and form-fill when they have fields.
func (p Plan) Steps() []Step {
	if p.Edit {
		steps := []Step{StepBasicInfo}
		if p.HasCoreFields {
			steps = append(steps, StepCoreFields)
		}
		if p.FormChosen && p.ChosenFormHasCustomFields {
			steps = append(steps, StepFormFill)
		}
		return steps
	}

	steps := []Step{StepAssetType}
	if p.HasCoreFields {
		steps = append(steps, StepCoreFields)
	}
	switch {
	case p.AvailableForms == 1:
		if p.ChosenFormHasCustomFields {
			steps = append(steps, StepFormFill)
		}
	case p.AvailableForms > 1:
		steps = append(steps, StepFormSelect)
		if !p.FormChosen || p.ChosenFormHasCustomFields {
			steps = append(steps, StepFormFill)
		}
	}
	return append(steps, StepReview)
}

// Includes reports whether step is part of the active sequence.
func (p Plan) Includes(step Step) bool {
	for _, s := range p.Steps() {
		if s == step {
			return true
		}
	}
	return false
}

// First returns the initial step.
func (p Plan) First() Step {
	return p.Steps()[0]
}

// Last returns the final step.
func (p Plan) Last() Step {
	steps := p.Steps()
	return steps[len(steps)-1]
}

// Next returns the first active step after from in canonical order. The
// second result is false when from is the last step.
func (p Plan) Next(from Step) (Step, bool) {
	rank := from.rank()
	for _, step := range p.Steps() {
		if step.rank() > rank {
			return step, true
		}
	}
	return from, false
}

// Back returns the last active step before from in canonical order, so
// backward navigation never lands on a skipped step.
func (p Plan) Back(from Step) (Step, bool) {
	rank := from.rank()
	steps := p.Steps()
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].rank() < rank {
			return steps[i], true
		}
	}
	return from, false
}
