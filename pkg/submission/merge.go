// Package submission merges per-stage form values into the single payload
// persisted on an asset and formats it for review.
package submission

import (
	"fmt"

	"github.com/goliatone/go-assetform/pkg/model"
)

// Stage names the wizard stage a value map was collected in.
type Stage string

const (
	StageCore   Stage = "core"
	StageCustom Stage = "custom"
	// StageStored holds values already on an asset that no current field
	// set owns. They are merged first so an edit never drops them.
	StageStored Stage = "stored"
)

// StageValue is the value map collected by one stage.
type StageValue struct {
	Stage  Stage
	Values model.FormValue
}

// Collision records a key written by more than one stage. The later stage's
// value is the one kept.
type Collision struct {
	Key     string
	Earlier Stage
	Later   Stage
}

func (c Collision) String() string {
	return fmt.Sprintf("field %q from %s stage overwritten by %s stage", c.Key, c.Earlier, c.Later)
}

// Result is the merged payload plus the collisions found while merging.
type Result struct {
	Values     model.FormValue
	Collisions []Collision
}

// Warnings renders the collisions as display strings.
func (r Result) Warnings() []string {
	if len(r.Collisions) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Collisions))
	for _, c := range r.Collisions {
		out = append(out, c.String())
	}
	return out
}

// Merge combines stage values left to right. The merge is shallow and
// right-biased: when two stages write the same key the later value wins and
// a Collision is recorded. Inputs are not mutated.
func Merge(stages ...StageValue) Result {
	result := Result{Values: make(model.FormValue)}
	owner := make(map[string]Stage)

	for _, stage := range stages {
		for _, key := range sortedKeys(stage.Values) {
			if earlier, ok := owner[key]; ok {
				result.Collisions = append(result.Collisions, Collision{Key: key, Earlier: earlier, Later: stage.Stage})
			}
			owner[key] = stage.Stage
			result.Values[key] = stage.Values[key]
		}
	}
	return result
}

// Core wraps values collected by the core-fields stage.
func Core(values model.FormValue) StageValue {
	return StageValue{Stage: StageCore, Values: values}
}

// Custom wraps values collected by the form-fill stage.
func Custom(values model.FormValue) StageValue {
	return StageValue{Stage: StageCustom, Values: values}
}

// Split partitions data by key ownership: keys defined in core go to the
// core map, every other key goes to the custom map. It reverses Merge for an
// asset being edited.
func Split(data model.FormValue, core model.FieldSet) (model.FormValue, model.FormValue) {
	coreValues := make(model.FormValue)
	customValues := make(model.FormValue)
	for key, value := range data {
		if _, ok := core.Lookup(key); ok {
			coreValues[key] = value
			continue
		}
		customValues[key] = value
	}
	return coreValues, customValues
}
